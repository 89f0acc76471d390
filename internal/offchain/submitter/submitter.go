// Package submitter runs one off-chain price cycle: fetch, pick a local
// signing identity, dispatch a signed set_prices request.
package submitter

//go:generate mockgen -source=submitter.go -destination=mock_submitter.go -package=submitter

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/core/tx/price"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

// Cycle errors. Each wraps the underlying cause where there is one.
var (
	ErrFetchFailed       = errors.New("price fetch failed")
	ErrNoSigningIdentity = errors.New("no local signing identity")
	ErrDispatchFailed    = errors.New("signed submission failed")
)

// PriceFetcher reads the current off-chain price.
type PriceFetcher interface {
	FetchPrice(ctx context.Context) (fixed.U16F16, error)
}

// Keyring exposes the node's local signing identities.
type Keyring interface {
	AnyLocalSigningIdentity() (*keystore.Identity, bool)
}

// Dispatcher signs a request and hands it to the host.
type Dispatcher interface {
	SubmitSigned(ctx context.Context, call tx.Transaction, signer tx.Signer) error
}

// Submitter holds no state between cycles.
type Submitter struct {
	fetcher    PriceFetcher
	keys       Keyring
	dispatcher Dispatcher
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Submitter) { s.log = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Submitter) { s.metrics = m }
}

// New creates a submitter signing with keys and dispatching through dispatcher.
func New(fetcher PriceFetcher, keys Keyring, dispatcher Dispatcher, opts ...Option) *Submitter {
	s := &Submitter{
		fetcher:    fetcher,
		keys:       keys,
		dispatcher: dispatcher,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("module", "submitter")
	return s
}

// RunCycle performs at most one submission for the block at height.
func (s *Submitter) RunCycle(ctx context.Context, height uint64) error {
	err := s.runCycle(ctx, height)
	s.metrics.ObserveCycle(outcome(err))
	return err
}

func (s *Submitter) runCycle(ctx context.Context, height uint64) error {
	log := s.log.WithField("height", height)

	p, err := s.fetcher.FetchPrice(ctx)
	if err != nil {
		log.WithError(err).Warn("fetch price failed, nothing submitted")
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	identity, ok := s.keys.AnyLocalSigningIdentity()
	if !ok || identity == nil {
		log.Error("no local accounts available")
		return ErrNoSigningIdentity
	}
	log = log.WithFields(logrus.Fields{"price": p, "signer": identity.Address()})

	call := price.NewSetPrices(p, height)
	if err := s.dispatcher.SubmitSigned(ctx, call, identity); err != nil {
		log.WithError(err).Error("submit signed set_prices failed")
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	log.Info("set_prices submitted")
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, ErrNoSigningIdentity):
		return "no_identity"
	default:
		return "dispatch_failed"
	}
}
