package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

type cycleFunc func(ctx context.Context, height uint64) error

func (f cycleFunc) RunCycle(ctx context.Context, height uint64) error { return f(ctx, height) }

func newWorker(t *testing.T, c Cycle, opts ...Option) (*Worker, *logtest.Hook) {
	t.Helper()
	l, hook := logtest.NewNullLogger()
	w := New(c, append([]Option{WithLogger(l)}, opts...)...)
	t.Cleanup(w.Stop)
	return w, hook
}

func TestOnBlockRunsCycle(t *testing.T) {
	got := make(chan uint64, 1)
	w, hook := newWorker(t, cycleFunc(func(_ context.Context, h uint64) error {
		got <- h
		return nil
	}))

	w.OnBlock(12)
	select {
	case h := <-got:
		assert.Equal(t, uint64(12), h)
	case <-time.After(time.Second):
		t.Fatal("cycle did not run")
	}
	w.Stop()
	assert.Equal(t, "worker executed", hook.LastEntry().Message)
}

func TestSkipsTickWhileBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var runs atomic.Int32
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	w, _ := newWorker(t, cycleFunc(func(ctx context.Context, _ uint64) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}), WithMetrics(m))

	require.True(t, w.TryRun(1))
	<-started
	assert.False(t, w.TryRun(2))
	assert.False(t, w.TryRun(3))
	close(release)
	w.Stop()

	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SkippedTicks))
}

func TestConcurrencyLimit(t *testing.T) {
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	w, _ := newWorker(t, cycleFunc(func(ctx context.Context, _ uint64) error {
		wg.Done()
		<-release
		return nil
	}), WithConcurrency(2))

	require.True(t, w.TryRun(1))
	require.True(t, w.TryRun(2))
	wg.Wait()
	assert.False(t, w.TryRun(3))
	close(release)
}

func TestCycleErrorIsLogged(t *testing.T) {
	w, hook := newWorker(t, cycleFunc(func(context.Context, uint64) error {
		return errors.New("feed down")
	}))
	require.True(t, w.TryRun(5))
	w.Stop()

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "worker error", entry.Message)
	assert.False(t, w.TryRun(6), "stopped worker ignores ticks")
}

func TestCyclePanicIsRecovered(t *testing.T) {
	w, hook := newWorker(t, cycleFunc(func(context.Context, uint64) error {
		panic("boom")
	}))
	require.True(t, w.TryRun(1))
	w.Stop()
	assert.Equal(t, "worker cycle panicked", hook.LastEntry().Message)
}

func TestStopCancelsInFlight(t *testing.T) {
	started := make(chan struct{})
	w, _ := newWorker(t, cycleFunc(func(ctx context.Context, _ uint64) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	require.True(t, w.TryRun(1))
	<-started

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
}
