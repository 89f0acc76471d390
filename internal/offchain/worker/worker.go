// Package worker runs the off-chain price cycle once per imported block.
package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

// DefaultConcurrency allows one cycle in flight per node.
const DefaultConcurrency = 1

// Cycle is one off-chain run for a block.
type Cycle interface {
	RunCycle(ctx context.Context, height uint64) error
}

// Worker is a block hook. Ticks that arrive while the concurrency limit is
// reached are skipped, not queued.
type Worker struct {
	cycle   Cycle
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	limit   int

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	group   *errgroup.Group
	stopped bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Worker) { w.log = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithConcurrency sets how many cycles may run at once. Values below one
// are ignored.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.limit = n
		}
	}
}

// New creates a worker running cycle on block ticks.
func New(cycle Cycle, opts ...Option) *Worker {
	w := &Worker{
		cycle: cycle,
		log:   logrus.StandardLogger(),
		limit: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.WithField("module", "offchain-worker")
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.group = &errgroup.Group{}
	w.group.SetLimit(w.limit)
	return w
}

// OnBlock starts a cycle for height without blocking the caller.
func (w *Worker) OnBlock(height uint64) {
	w.TryRun(height)
}

// TryRun is OnBlock with the outcome exposed.
func (w *Worker) TryRun(height uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}

	log := w.log.WithField("height", height)
	started := w.group.TryGo(func() error {
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("worker cycle panicked")
			}
		}()
		if err := w.cycle.RunCycle(w.ctx, height); err != nil {
			log.WithError(err).Error("worker error")
			return nil
		}
		log.Info("worker executed")
		return nil
	})
	if !started {
		w.metrics.ObserveSkippedTick()
		log.Warn("previous cycle still running, skipping block")
	}
	return started
}

// Stop cancels in-flight cycles and waits for them to return. Later ticks
// are ignored.
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.cancel()
	w.mu.Unlock()

	_ = w.group.Wait()
}
