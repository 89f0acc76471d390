// Package node assembles the oracle from configuration: storage, the devnet
// host, the price aggregator, the off-chain worker, the event archive and
// the query surface.
package node

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goPriceOracle/internal/config"
	"github.com/LeJamon/goPriceOracle/internal/core/accounts"
	"github.com/LeJamon/goPriceOracle/internal/core/aggregator"
	"github.com/LeJamon/goPriceOracle/internal/core/chain"
	"github.com/LeJamon/goPriceOracle/internal/core/events"
	"github.com/LeJamon/goPriceOracle/internal/core/state"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/core/tx/price"
	"github.com/LeJamon/goPriceOracle/internal/core/txq"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/offchain/fetcher"
	"github.com/LeJamon/goPriceOracle/internal/offchain/submitter"
	"github.com/LeJamon/goPriceOracle/internal/offchain/worker"
	"github.com/LeJamon/goPriceOracle/internal/rpc"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
	"github.com/LeJamon/goPriceOracle/internal/storage"
	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/LeJamon/goPriceOracle/internal/storage/eventdb"
)

// StateDBName is the key-value database holding chain and oracle state.
const StateDBName = "oracle"

const shutdownTimeout = 10 * time.Second

// Node owns every component of a running oracle.
type Node struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	started  time.Time
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	manager    database.Manager
	store      *state.Store
	bus        *events.Bus
	keys       *keystore.Store
	signers    *accounts.Registry
	aggregator *aggregator.Aggregator
	engine     *tx.Engine
	chain      *chain.Chain

	worker  *worker.Worker
	archive *eventdb.Archive

	rpc     *rpc.Server
	ws      *rpc.WebSocketServer
	limiter *rpc.RateLimiter
	http    *rpc.HTTPServer

	unsubscribe []func()
}

// New builds a node. Nothing runs until Run; Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Node, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	n := &Node{
		cfg:      cfg,
		log:      log,
		started:  time.Now(),
		registry: reg,
		metrics:  metrics.New(reg),
	}
	steps := []func() error{
		n.buildStorage,
		n.buildIdentities,
		func() error { return n.buildChain(ctx) },
		n.buildOffchain,
		func() error { return n.buildArchive(ctx) },
		n.buildRPC,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = n.Close()
			return nil, err
		}
	}
	return n, nil
}

func (n *Node) buildStorage() error {
	manager, err := storage.NewManager(n.cfg.Node.Backend, n.cfg.Node.DataDir)
	if err != nil {
		return err
	}
	n.manager = manager

	db, err := manager.OpenDB(StateDBName)
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	n.store = state.New(db)
	n.bus = events.NewBus()
	n.bus.OnDrop(func(events.PriceStored) { n.metrics.ObserveEventDropped() })
	return nil
}

func (n *Node) buildIdentities() error {
	keys, err := LoadKeys(n.cfg.Keys)
	if err != nil {
		return err
	}
	n.keys = keys

	n.signers = accounts.NewRegistry()
	addrs := n.cfg.Signers.Accounts
	if len(addrs) == 0 {
		for _, id := range keys.All() {
			addrs = append(addrs, id.Address())
		}
	}
	for _, addr := range addrs {
		if err := n.signers.Add(addr); err != nil {
			return fmt.Errorf("register signer %s: %w", addr, err)
		}
	}
	n.log.WithFields(logrus.Fields{
		"identities": keys.Len(),
		"signers":    n.signers.Len(),
	}).Info("identities loaded")
	return nil
}

func (n *Node) buildChain(ctx context.Context) error {
	n.aggregator = aggregator.New(n.store, n.signers, n.bus,
		aggregator.WithLogger(n.log),
		aggregator.WithMetrics(n.metrics),
	)

	engine, err := tx.NewEngine(n.cfg.Node.ReplayCache, n.log)
	if err != nil {
		return fmt.Errorf("create request engine: %w", err)
	}
	engine.Route(tx.TypeSetPrices, price.NewHandler(n.aggregator))
	n.engine = engine

	queue := txq.New(txq.Config{
		QueueSize:   n.cfg.Node.QueueSize,
		MaxPerBlock: n.cfg.Node.MaxPerBlock,
	})
	c, err := chain.New(ctx, n.store, engine, queue,
		chain.WithLogger(n.log),
		chain.WithMetrics(n.metrics),
		chain.WithBlockInterval(n.cfg.Node.BlockInterval),
	)
	if err != nil {
		return err
	}
	n.chain = c
	return nil
}

func (n *Node) buildOffchain() error {
	if !n.cfg.Offchain.Enabled {
		return nil
	}
	f, err := fetcher.New(FetcherConfig(n.cfg.Feed),
		fetcher.WithLogger(n.log),
		fetcher.WithMetrics(n.metrics),
	)
	if err != nil {
		return fmt.Errorf("create price fetcher: %w", err)
	}
	sub := submitter.New(f, n.keys, n.chain,
		submitter.WithLogger(n.log),
		submitter.WithMetrics(n.metrics),
	)
	n.worker = worker.New(sub,
		worker.WithLogger(n.log),
		worker.WithMetrics(n.metrics),
		worker.WithConcurrency(n.cfg.Offchain.Concurrency),
	)
	n.chain.AddHook(n.worker)
	return nil
}

func (n *Node) buildArchive(ctx context.Context) error {
	if !n.cfg.Events.Enabled() {
		return nil
	}
	a, err := eventdb.Open(ctx, n.cfg.Events.Archive(),
		eventdb.WithLogger(n.log),
		eventdb.WithMetrics(n.metrics),
	)
	if err != nil {
		return fmt.Errorf("open event archive: %w", err)
	}
	n.archive = a
	return nil
}

func (n *Node) buildRPC() error {
	if !n.cfg.RPC.Enabled {
		return nil
	}
	n.rpc = rpc.NewServer(n.Services(), n.cfg.RPC.Timeout,
		rpc.WithLogger(n.log),
		rpc.WithMetrics(n.metrics),
	)
	n.ws = rpc.NewWebSocketServer(n.rpc, rpc.WithLogger(n.log), rpc.WithMetrics(n.metrics))
	n.chain.AddHook(n.ws)

	limiter, err := rpc.NewRateLimiter(n.cfg.RPC.RateLimit, n.cfg.RPC.RateBurst, n.metrics)
	if err != nil {
		return fmt.Errorf("create rate limiter: %w", err)
	}
	n.limiter = limiter
	return nil
}

// Services returns what the query surface reads from.
func (n *Node) Services() *rpc_types.Services {
	svc := &rpc_types.Services{
		Oracle:  n.aggregator,
		Chain:   n.chain,
		Signers: n.signers,
		Version: Version,
		Started: n.started,
	}
	if n.archive != nil {
		svc.Archive = n.archive
	}
	return svc
}

// Handler returns the HTTP handler serving JSON-RPC, WebSocket, metrics and
// health. It is nil when RPC is disabled.
func (n *Node) Handler() http.Handler {
	if n.rpc == nil {
		return nil
	}
	return rpc.NewHandler(rpc.HandlerConfig{
		RPC:       n.rpc,
		WebSocket: n.ws,
		Limiter:   n.limiter,
		Gatherer:  n.registry,
		Chain:     n.chain,
	})
}

// Chain returns the devnet host.
func (n *Node) Chain() *chain.Chain { return n.chain }

// Aggregator returns the on-chain price state machine.
func (n *Node) Aggregator() *aggregator.Aggregator { return n.aggregator }

// Keys returns the local signing identities.
func (n *Node) Keys() *keystore.Store { return n.keys }

// Archive returns the event archive, nil when disabled.
func (n *Node) Archive() *eventdb.Archive { return n.archive }

// Bus returns the PriceStored fan-out.
func (n *Node) Bus() *events.Bus { return n.bus }

// Registry returns the node's metrics registry.
func (n *Node) Registry() *prometheus.Registry { return n.registry }

// Listen binds the RPC listener ahead of Run so callers learn the address.
func (n *Node) Listen() (string, error) {
	if n.rpc == nil {
		return "", nil
	}
	if n.http != nil {
		return n.http.Addr(), nil
	}
	hs, err := rpc.Listen(n.cfg.RPC.Listen, n.Handler(), n.log)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", n.cfg.RPC.Listen, err)
	}
	n.http = hs
	return hs.Addr(), nil
}

// Run starts block production and the background consumers, then blocks
// until ctx is done and shuts everything down.
func (n *Node) Run(ctx context.Context) error {
	if _, err := n.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if n.archive != nil {
		ch, unsubscribe := n.bus.Subscribe(n.cfg.Events.Buffer)
		n.unsubscribe = append(n.unsubscribe, unsubscribe)
		g.Go(func() error {
			if err := n.archive.Run(gctx, ch); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("event archive: %w", err)
			}
			return nil
		})
	}
	if n.ws != nil {
		ch, unsubscribe := n.bus.Subscribe(n.cfg.Events.Buffer)
		n.unsubscribe = append(n.unsubscribe, unsubscribe)
		g.Go(func() error {
			n.ws.PublishPrices(gctx, ch)
			return nil
		})
	}
	if n.http != nil {
		g.Go(n.http.Serve)
	}

	if err := n.chain.Start(gctx); err != nil {
		cancel()
		n.shutdown()
		_ = g.Wait()
		return err
	}
	n.log.WithFields(logrus.Fields{
		"height":   n.chain.Height(),
		"offchain": n.worker != nil,
		"archive":  n.archive != nil,
	}).Info("node started")

	<-gctx.Done()
	n.shutdown()
	return g.Wait()
}

func (n *Node) shutdown() {
	n.log.Info("shutting down")
	n.chain.Stop()
	if n.worker != nil {
		n.worker.Stop()
	}
	if n.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := n.http.Shutdown(ctx); err != nil {
			n.log.WithError(err).Warn("http shutdown")
		}
		cancel()
	}
	if n.ws != nil {
		n.ws.Close()
	}
	for _, cancel := range n.unsubscribe {
		cancel()
	}
}

// Close releases storage and the archive. It is safe after Run returns.
func (n *Node) Close() error {
	var errs []error
	if n.worker != nil {
		n.worker.Stop()
	}
	if n.http != nil {
		errs = append(errs, n.http.Close())
	}
	if n.bus != nil {
		n.bus.Close()
	}
	if n.archive != nil {
		errs = append(errs, n.archive.Close())
	}
	if n.manager != nil {
		errs = append(errs, n.manager.Close())
	}
	return errors.Join(errs...)
}
