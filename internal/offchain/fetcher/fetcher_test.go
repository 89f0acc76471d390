package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/metrics"
)

func newFetcher(t *testing.T, url string, opts ...Option) *Fetcher {
	t.Helper()
	l, _ := logtest.NewNullLogger()
	f, err := New(Config{URL: url, Timeout: 200 * time.Millisecond}, append([]Option{WithLogger(l)}, opts...)...)
	require.NoError(t, err)
	return f
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPrice(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"USD":0.0123}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := newFetcher(t, srv.URL, WithMetrics(m))

	price, err := f.FetchPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed.MustParse("0.0123"), price)
	assert.Equal(t, "fsym=TFT&tsyms=USD", query)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchResults.WithLabelValues("ok")))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"USD":1}`, ErrBadStatus},
		{"not found", http.StatusNotFound, ``, ErrBadStatus},
		{"invalid utf8", http.StatusOK, "{\"USD\":\xff}", ErrEncoding},
		{"not json", http.StatusOK, `USD=1`, ErrMalformed},
		{"array", http.StatusOK, `[1,2]`, ErrMalformed},
		{"missing field", http.StatusOK, `{"EUR":1.5}`, ErrMalformed},
		{"string field", http.StatusOK, `{"USD":"1.5"}`, ErrMalformed},
		{"negative", http.StatusOK, `{"USD":-1}`, ErrMalformed},
		{"too large", http.StatusOK, `{"USD":70000}`, ErrMalformed},
		{"error payload", http.StatusOK, `{"Response":"Error","Message":"fsym is a required param."}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFetcher(t, serve(t, tt.status, tt.body).URL)
			_, err := f.FetchPrice(context.Background())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := newFetcher(t, srv.URL)
	start := time.Now()
	_, err := f.FetchPrice(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetchSlowBodyTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"USD":`))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, err := newFetcher(t, srv.URL).FetchPrice(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newFetcher(t, url).FetchPrice(context.Background())
	require.ErrorIs(t, err, ErrIO)
}

func TestFetchBodyLimit(t *testing.T) {
	body := `{"USD":1,"pad":"` + strings.Repeat("x", DefaultMaxBodyBytes) + `"}`
	f := newFetcher(t, serve(t, http.StatusOK, body).URL)
	_, err := f.FetchPrice(context.Background())
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParsePriceKeepsDecimalPrecision(t *testing.T) {
	p, err := ParsePrice([]byte(`{"USD": 1e-2}`))
	require.NoError(t, err)
	assert.Equal(t, fixed.MustParse("0.01"), p)

	p, err = ParsePrice([]byte(`{"USD": 65535.99998474121}`))
	require.NoError(t, err)
	assert.Equal(t, fixed.Max, p)
}

func TestNewValidatesURL(t *testing.T) {
	_, err := New(Config{URL: "ftp://example.com"})
	assert.Error(t, err)

	f, err := New(Config{URL: "http://feed.local/data/price?extra=1", Symbol: "btc"})
	require.NoError(t, err)
	assert.Equal(t, "http://feed.local/data/price?extra=1&fsym=BTC&tsyms=USD", f.Endpoint())

	f, err = New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultURL+"?fsym=TFT&tsyms=USD", f.Endpoint())
}
