// Package chain is a single-node devnet host: it owns the block clock,
// drains the submission queue into the request engine once per block and
// notifies block hooks afterwards.
package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/core/state"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/core/txq"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

// MinBlockInterval is the shortest interval the block clock supports.
const MinBlockInterval = time.Second

var (
	ErrAlreadyStarted = errors.New("chain already started")
	ErrBadInterval    = fmt.Errorf("block interval must be at least %s", MinBlockInterval)
)

// Hook is notified after every produced block.
type Hook interface {
	OnBlock(height uint64)
}

// HookFunc adapts a function to Hook.
type HookFunc func(height uint64)

// OnBlock calls f(height).
func (f HookFunc) OnBlock(height uint64) { f(height) }

// Block is the outcome of one ProduceBlock call.
type Block struct {
	Height   uint64
	Receipts []tx.ApplyResult
}

// Chain is the devnet host. Blocks are produced one at a time.
type Chain struct {
	// mu serializes block production
	mu sync.Mutex

	store  *state.Store
	engine *tx.Engine
	queue  *txq.Queue

	hooksMu sync.RWMutex
	hooks   []Hook

	heightMu sync.RWMutex
	height   uint64

	interval time.Duration
	cron     *cron.Cron

	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Option configures a Chain.
type Option func(*Chain)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Chain) { c.log = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Chain) { c.metrics = m }
}

// WithBlockInterval sets the block clock period used by Start.
func WithBlockInterval(d time.Duration) Option {
	return func(c *Chain) { c.interval = d }
}

// New restores the block height from store.
func New(ctx context.Context, store *state.Store, engine *tx.Engine, queue *txq.Queue, opts ...Option) (*Chain, error) {
	c := &Chain{
		store:    store,
		engine:   engine,
		queue:    queue,
		interval: 6 * time.Second,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("module", "chain")

	h, err := store.Height(ctx)
	if err != nil {
		return nil, fmt.Errorf("load chain height: %w", err)
	}
	c.height = h
	return c, nil
}

// AddHook registers h for block notifications.
func (c *Chain) AddHook(h Hook) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = append(c.hooks, h)
}

// Height returns the last produced block.
func (c *Chain) Height() uint64 {
	c.heightMu.RLock()
	defer c.heightMu.RUnlock()
	return c.height
}

// QueueLen returns the number of requests waiting for the next block.
func (c *Chain) QueueLen() int { return c.queue.Len() }

// Submit preflights an already signed request and enqueues it for the
// next block.
func (c *Chain) Submit(t tx.Transaction) tx.Result {
	if res := c.engine.Preflight(t); !res.IsSuccess() {
		return res
	}
	if err := c.queue.Submit(t); err != nil {
		return tx.TelCAN_NOT_QUEUE_FULL
	}
	return tx.TesSUCCESS
}

// SubmitSigned signs call with signer and enqueues it. Rejections are
// returned as *tx.ResultError.
func (c *Chain) SubmitSigned(ctx context.Context, call tx.Transaction, signer tx.Signer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tx.Sign(call, signer); err != nil {
		return err
	}
	if res := c.Submit(call); !res.IsSuccess() {
		return tx.Errorf(res, "%s", res.Message())
	}
	return nil
}

// ProduceBlock advances the height, applies queued requests in order and
// notifies hooks.
func (c *Chain) ProduceBlock(ctx context.Context) (Block, error) {
	c.mu.Lock()
	block, err := c.produce(ctx)
	c.mu.Unlock()
	if err != nil {
		return block, err
	}

	c.hooksMu.RLock()
	hooks := append([]Hook(nil), c.hooks...)
	c.hooksMu.RUnlock()
	for _, h := range hooks {
		h.OnBlock(block.Height)
	}
	return block, nil
}

func (c *Chain) produce(ctx context.Context) (Block, error) {
	height := c.Height() + 1
	if err := c.store.SetHeight(ctx, height); err != nil {
		return Block{}, err
	}
	c.heightMu.Lock()
	c.height = height
	c.heightMu.Unlock()

	block := Block{Height: height}
	for _, t := range c.queue.Drain(0) {
		receipt := c.engine.Apply(ctx, t, height)
		block.Receipts = append(block.Receipts, receipt)
		c.metrics.ObserveTxResult(receipt.Result.String())

		entry := c.log.WithFields(logrus.Fields{
			"height":  height,
			"type":    t.TxType().String(),
			"account": t.GetCommon().Account,
			"hash":    receipt.HashHex(),
			"result":  receipt.Result.String(),
		})
		if receipt.Applied {
			entry.Info("request applied")
		} else {
			entry.Warn("request rejected")
		}
	}

	c.metrics.ObserveBlock(height, c.queue.Len())
	c.log.WithFields(logrus.Fields{"height": height, "requests": len(block.Receipts)}).Debug("block produced")
	return block, nil
}

// Start produces a block every interval until Stop.
func (c *Chain) Start(ctx context.Context) error {
	if c.interval < MinBlockInterval {
		return ErrBadInterval
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cron.PrintfLogger(c.log)
	c.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := c.cron.AddFunc(spec, func() {
		if _, err := c.ProduceBlock(ctx); err != nil {
			c.log.WithError(err).Error("block production failed")
		}
	}); err != nil {
		c.cron = nil
		return fmt.Errorf("schedule blocks: %w", err)
	}
	c.cron.Start()
	c.log.WithField("interval", c.interval).Info("block production started")
	return nil
}

// Stop halts the block clock and waits for a running block to finish.
func (c *Chain) Stop() {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr == nil {
		return
	}
	<-cr.Stop().Done()
	c.log.Info("block production stopped")
}
