// Package metrics exposes the node's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "priced"

// Metrics holds all collectors of the node
type Metrics struct {
	// Aggregator
	Submissions        *prometheus.CounterVec
	CurrentPrice       prometheus.Gauge
	AveragePrice       prometheus.Gauge
	HistoryLength      prometheus.Gauge
	LastSnapshotHeight prometheus.Gauge
	Snapshots          prometheus.Counter

	// Off-chain
	FetchLatency prometheus.Histogram
	FetchResults *prometheus.CounterVec
	Cycles       *prometheus.CounterVec
	SkippedTicks prometheus.Counter

	// Devnet host
	BlockHeight prometheus.Gauge
	TxResults   *prometheus.CounterVec
	QueueDepth  prometheus.Gauge

	// Query surface and events
	RPCRequests    *prometheus.CounterVec
	RateLimited    prometheus.Counter
	WSClients      prometheus.Gauge
	EventsDropped  prometheus.Counter
	EventsArchived prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the collectors registered on the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "submissions_total",
			Help:      "Price submissions applied on-chain by result",
		}, []string{"result"}),
		CurrentPrice: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "current_price",
			Help:      "Latest accepted price",
		}),
		AveragePrice: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "average_price",
			Help:      "Mean of the price history as of the last snapshot",
		}),
		HistoryLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "history_length",
			Help:      "Number of snapshotted prices",
		}),
		LastSnapshotHeight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "last_snapshot_height",
			Help:      "Block height of the last snapshot",
		}),
		Snapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "snapshots_total",
			Help:      "Snapshots taken",
		}),
		FetchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "offchain",
			Name:      "fetch_duration_seconds",
			Help:      "Price feed request latency",
			Buckets:   []float64{.05, .1, .25, .5, 1, 1.5, 2, 3},
		}),
		FetchResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offchain",
			Name:      "fetch_total",
			Help:      "Price feed requests by outcome",
		}, []string{"outcome"}),
		Cycles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offchain",
			Name:      "cycles_total",
			Help:      "Submission cycles by outcome",
		}, []string{"outcome"}),
		SkippedTicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offchain",
			Name:      "skipped_ticks_total",
			Help:      "Block ticks skipped because a cycle was still running",
		}),
		BlockHeight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "block_height",
			Help:      "Height of the last produced block",
		}),
		TxResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "tx_results_total",
			Help:      "Applied requests by result code",
		}, []string{"result"}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "queue_depth",
			Help:      "Signed requests waiting for the next block",
		}),
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "JSON-RPC requests by method and status",
		}, []string{"method", "status"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		WSClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dropped_total",
			Help:      "Events dropped for slow subscribers",
		}),
		EventsArchived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "archived_total",
			Help:      "Events written to the archive",
		}),
	}
}

// ObserveSubmission records an aggregator outcome.
func (m *Metrics) ObserveSubmission(result string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(result).Inc()
}

// ObserveState publishes the oracle slots.
func (m *Metrics) ObserveState(current, average float64, historyLen int, lastSnapshot uint64) {
	if m == nil {
		return
	}
	m.CurrentPrice.Set(current)
	m.AveragePrice.Set(average)
	m.HistoryLength.Set(float64(historyLen))
	m.LastSnapshotHeight.Set(float64(lastSnapshot))
}

func (m *Metrics) ObserveCurrentPrice(current float64) {
	if m == nil {
		return
	}
	m.CurrentPrice.Set(current)
}

func (m *Metrics) ObserveSnapshot() {
	if m == nil {
		return
	}
	m.Snapshots.Inc()
}

func (m *Metrics) ObserveFetch(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.FetchLatency.Observe(took.Seconds())
	m.FetchResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCycle(outcome string) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSkippedTick() {
	if m == nil {
		return
	}
	m.SkippedTicks.Inc()
}

func (m *Metrics) ObserveBlock(height uint64, queueDepth int) {
	if m == nil {
		return
	}
	m.BlockHeight.Set(float64(height))
	m.QueueDepth.Set(float64(queueDepth))
}

func (m *Metrics) ObserveTxResult(result string) {
	if m == nil {
		return
	}
	m.TxResults.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveRPC(method, status string) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

func (m *Metrics) AddWSClients(delta int) {
	if m == nil {
		return
	}
	m.WSClients.Add(float64(delta))
}

func (m *Metrics) ObserveEventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

func (m *Metrics) ObserveEventArchived() {
	if m == nil {
		return
	}
	m.EventsArchived.Inc()
}
