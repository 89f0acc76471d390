// Package aggregator is the on-chain half of the oracle: it accepts signed
// price submissions, keeps the current price and snapshots it into the
// history at most once every SnapshotInterval blocks.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/core/events"
	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/state"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

// SnapshotInterval is the number of blocks that must strictly elapse since
// the last snapshot before a submission is appended to the history.
const SnapshotInterval uint64 = 100

// ErrUnauthorized rejects submissions not signed by a registered signer.
var ErrUnauthorized = errors.New("origin is not a registered signer")

// Origin is the caller of a submission. The zero value is unsigned.
type Origin struct {
	Signer string
}

// Signed returns the origin of a request signed by address.
func Signed(address string) Origin { return Origin{Signer: address} }

// IsSigned reports whether the submission carried a signer.
func (o Origin) IsSigned() bool { return o.Signer != "" }

// Authorizer decides which signers may submit.
type Authorizer interface {
	IsAuthorized(address string) bool
}

// Emitter receives PriceStored events.
type Emitter interface {
	Emit(events.PriceStored)
}

// Aggregator applies submissions to the persisted oracle state. Calls are
// serialized.
type Aggregator struct {
	mu      sync.Mutex
	store   *state.Store
	auth    Authorizer
	emitter Emitter
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Aggregator) { a.log = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New creates an aggregator over store. Only signers auth accepts may submit.
func New(store *state.Store, auth Authorizer, emitter Emitter, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:   store,
		auth:    auth,
		emitter: emitter,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.WithField("module", "aggregator")
	return a
}

// SnapshotDue reports whether a submission at height triggers a snapshot.
func SnapshotDue(height, lastSnapshot uint64) bool {
	return saturatingSub(height, lastSnapshot) > SnapshotInterval
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// Apply stores price as the current price and, when a snapshot is due,
// appends it to the history and recomputes the average. Unauthorized
// submissions return ErrUnauthorized and leave state untouched; any other
// error is a storage fault.
func (a *Aggregator) Apply(ctx context.Context, origin Origin, price fixed.U16F16, height uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	entry := a.log.WithFields(logrus.Fields{"signer": origin.Signer, "price": price, "height": height})

	if !origin.IsSigned() || a.auth == nil || !a.auth.IsAuthorized(origin.Signer) {
		a.metrics.ObserveSubmission("unauthorized")
		entry.Warn("rejected price from unregistered origin")
		return ErrUnauthorized
	}

	last, err := a.store.LastSnapshotHeight(ctx)
	if err != nil {
		a.metrics.ObserveSubmission("error")
		return fmt.Errorf("load last snapshot height: %w", err)
	}

	update := state.Update{CurrentPrice: &price}
	snapshot := SnapshotDue(height, last)

	var (
		history []fixed.U16F16
		average fixed.U16F16
	)
	if snapshot {
		entry.Info("storing average now")
		if history, err = a.store.History(ctx); err != nil {
			a.metrics.ObserveSubmission("error")
			return fmt.Errorf("load price history: %w", err)
		}
		history = append(history, price)
		average = fixed.Mean(history)

		update.History = history
		update.AveragePrice = &average
		update.LastSnapshotHeight = &height
	}

	if err := a.store.Commit(ctx, update); err != nil {
		a.metrics.ObserveSubmission("error")
		return err
	}

	if snapshot {
		entry.WithFields(logrus.Fields{"average": average, "history_len": len(history)}).Info("average price")
		a.metrics.ObserveSnapshot()
		a.metrics.ObserveState(price.Float64(), average.Float64(), len(history), height)
	} else {
		a.metrics.ObserveCurrentPrice(price.Float64())
	}
	a.metrics.ObserveSubmission("accepted")

	if a.emitter != nil {
		a.emitter.Emit(events.PriceStored{
			Price:     price,
			Submitter: origin.Signer,
			Height:    height,
			Snapshot:  snapshot,
		})
	}
	entry.WithField("snapshot", snapshot).Debug("price stored")
	return nil
}

// CurrentPrice returns the last accepted price.
func (a *Aggregator) CurrentPrice(ctx context.Context) (fixed.U16F16, error) {
	return a.store.CurrentPrice(ctx)
}

// AveragePrice returns the mean of the history as of the last snapshot.
func (a *Aggregator) AveragePrice(ctx context.Context) (fixed.U16F16, error) {
	return a.store.AveragePrice(ctx)
}

// LastSnapshotHeight returns the height of the last snapshot, 0 at genesis.
func (a *Aggregator) LastSnapshotHeight(ctx context.Context) (uint64, error) {
	return a.store.LastSnapshotHeight(ctx)
}

// History returns every snapshotted price, oldest first.
func (a *Aggregator) History(ctx context.Context) ([]fixed.U16F16, error) {
	return a.store.History(ctx)
}

// Snapshot reads every oracle slot.
func (a *Aggregator) Snapshot(ctx context.Context) (state.Snapshot, error) {
	return a.store.Snapshot(ctx)
}
