package events

import (
	"testing"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitFansOut(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(4)
	defer cancelA()
	b, cancelB := bus.Subscribe(4)
	defer cancelB()

	ev := PriceStored{Price: fixed.FromInt(100), Submitter: "addr", Height: 50}
	bus.Emit(ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestSlowSubscriberDrops(t *testing.T) {
	bus := NewBus()
	var dropped int
	bus.OnDrop(func(PriceStored) { dropped++ })

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Emit(PriceStored{Height: 1})
	bus.Emit(PriceStored{Height: 2})

	got := <-ch
	assert.Equal(t, uint64(1), got.Height)
	assert.Equal(t, 1, dropped)
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	require.Equal(t, 1, bus.Len())

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Len())

	assert.NotPanics(t, func() { bus.Emit(PriceStored{}) })
}

func TestClose(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	bus.Close()
	_, ok := <-ch
	assert.False(t, ok)
	assert.NotPanics(t, cancel)

	late, _ := bus.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}
