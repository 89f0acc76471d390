package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSubmission("accepted")
		m.ObserveState(1, 1, 1, 1)
		m.ObserveCurrentPrice(1)
		m.ObserveSnapshot()
		m.ObserveFetch("ok", time.Second)
		m.ObserveCycle("submitted")
		m.ObserveSkippedTick()
		m.ObserveBlock(1, 0)
		m.ObserveTxResult("tesSUCCESS")
		m.ObserveRPC("server_info", "success")
		m.ObserveRateLimited()
		m.AddWSClients(1)
		m.ObserveEventDropped()
		m.ObserveEventArchived()
	})
}

func TestCollectorsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSubmission("accepted")
	m.ObserveSubmission("accepted")
	m.ObserveSubmission("unauthorized")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Submissions.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("unauthorized")))

	m.ObserveState(300, 250, 2, 260)
	assert.Equal(t, 250.0, testutil.ToFloat64(m.AveragePrice))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HistoryLength))

	m.ObserveBlock(7, 3)
	assert.Equal(t, 7.0, testutil.ToFloat64(m.BlockHeight))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.QueueDepth))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewRegistersOnlyOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
