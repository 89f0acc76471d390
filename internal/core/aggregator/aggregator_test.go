package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPriceOracle/internal/core/events"
	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/state"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/LeJamon/goPriceOracle/internal/storage/database/memory"
)

const signer = "signer-address"

type allowList map[string]bool

func (a allowList) IsAuthorized(addr string) bool { return a[addr] }

type recorder struct{ events []events.PriceStored }

func (r *recorder) Emit(ev events.PriceStored) { r.events = append(r.events, ev) }

type env struct {
	agg     *Aggregator
	store   *state.Store
	emitted *recorder
	metrics *metrics.Metrics
	logs    *logtest.Hook
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := state.New(memory.NewDB())
	rec := &recorder{}
	m := metrics.New(prometheus.NewRegistry())
	return &env{
		agg:     New(store, allowList{signer: true}, rec, WithLogger(logger), WithMetrics(m)),
		store:   store,
		emitted: rec,
		metrics: m,
		logs:    hook,
	}
}

func (e *env) snapshot(t *testing.T) state.Snapshot {
	t.Helper()
	snap, err := e.agg.Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestSnapshotScenario(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// 50 - 0 > 100 is false.
	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(100), 50))
	snap := e.snapshot(t)
	assert.Equal(t, fixed.FromInt(100), snap.CurrentPrice)
	assert.Empty(t, snap.History)
	assert.Equal(t, fixed.Zero, snap.AveragePrice)
	assert.Equal(t, uint64(0), snap.LastSnapshotHeight)

	// 150 - 0 > 100.
	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(200), 150))
	snap = e.snapshot(t)
	assert.Equal(t, fixed.FromInt(200), snap.CurrentPrice)
	assert.Equal(t, []fixed.U16F16{fixed.FromInt(200)}, snap.History)
	assert.Equal(t, fixed.FromInt(200), snap.AveragePrice)
	assert.Equal(t, uint64(150), snap.LastSnapshotHeight)

	// 260 - 150 > 100.
	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(300), 260))
	snap = e.snapshot(t)
	assert.Equal(t, fixed.FromInt(300), snap.CurrentPrice)
	assert.Equal(t, []fixed.U16F16{fixed.FromInt(200), fixed.FromInt(300)}, snap.History)
	assert.Equal(t, fixed.FromInt(250), snap.AveragePrice)
	assert.Equal(t, uint64(260), snap.LastSnapshotHeight)

	require.Len(t, e.emitted.events, 3)
	assert.Equal(t, events.PriceStored{Price: fixed.FromInt(100), Submitter: signer, Height: 50}, e.emitted.events[0])
	assert.True(t, e.emitted.events[1].Snapshot)
	assert.True(t, e.emitted.events[2].Snapshot)

	assert.Equal(t, 3.0, testutil.ToFloat64(e.metrics.Submissions.WithLabelValues("accepted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.Snapshots))
}

func TestSnapshotThresholdIsStrict(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(1), 100))
	assert.Empty(t, e.snapshot(t).History)

	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(2), 101))
	snap := e.snapshot(t)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, uint64(101), snap.LastSnapshotHeight)

	// Exactly 100 blocks later: no snapshot.
	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(3), 201))
	snap = e.snapshot(t)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, fixed.FromInt(3), snap.CurrentPrice)

	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(4), 202))
	assert.Len(t, e.snapshot(t).History, 2)
}

func TestHeightBelowLastSnapshotSaturates(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(10), 500))
	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(20), 3))

	snap := e.snapshot(t)
	assert.Equal(t, fixed.FromInt(20), snap.CurrentPrice)
	assert.Len(t, snap.History, 1)
	assert.Equal(t, uint64(500), snap.LastSnapshotHeight)
}

func TestUnauthorizedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(200), 150))
	before := e.snapshot(t)

	for _, origin := range []Origin{{}, Signed("intruder")} {
		err := e.agg.Apply(ctx, origin, fixed.FromInt(999), 1000)
		require.ErrorIs(t, err, ErrUnauthorized)
	}

	assert.Equal(t, before, e.snapshot(t))
	assert.Len(t, e.emitted.events, 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.Submissions.WithLabelValues("unauthorized")))
	assert.Equal(t, logrus.WarnLevel, e.logs.LastEntry().Level)
}

func TestAverageMatchesMeanOfHistory(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	prices := []string{"0.0123", "0.0456", "0.0789", "12.5", "0.0001"}
	height := uint64(0)
	for _, p := range prices {
		height += 101
		require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.MustParse(p), height))

		snap := e.snapshot(t)
		assert.Equal(t, fixed.Mean(snap.History), snap.AveragePrice)
		assert.Equal(t, fixed.MustParse(p), snap.CurrentPrice)
	}
	assert.Len(t, e.snapshot(t).History, len(prices))
}

func TestHistoryGrowsByOnePerSnapshot(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	heights := []uint64{10, 101, 150, 202, 303, 304, 1000}
	prevLen := 0
	for _, h := range heights {
		last, err := e.agg.LastSnapshotHeight(ctx)
		require.NoError(t, err)
		due := SnapshotDue(h, last)

		require.NoError(t, e.agg.Apply(ctx, Signed(signer), fixed.FromInt(uint16(h)), h))
		history, err := e.agg.History(ctx)
		require.NoError(t, err)

		if due {
			assert.Len(t, history, prevLen+1, "height %d", h)
		} else {
			assert.Len(t, history, prevLen, "height %d", h)
		}
		prevLen = len(history)
	}
}

type failingBatch struct{ database.DB }

func (failingBatch) Batch(context.Context, []database.BatchOperation) error {
	return errors.New("io error")
}

func TestStorageFailureIsNotARejection(t *testing.T) {
	rec := &recorder{}
	logger, _ := logtest.NewNullLogger()
	agg := New(state.New(failingBatch{memory.NewDB()}), allowList{signer: true}, rec, WithLogger(logger))

	err := agg.Apply(context.Background(), Signed(signer), fixed.FromInt(1), 200)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Empty(t, rec.events)
}

func TestSnapshotDue(t *testing.T) {
	assert.False(t, SnapshotDue(50, 0))
	assert.False(t, SnapshotDue(100, 0))
	assert.True(t, SnapshotDue(101, 0))
	assert.False(t, SnapshotDue(0, 150))
	assert.True(t, SnapshotDue(^uint64(0), 0))
}
