package node

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPriceOracle/internal/config"
	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
)

func nullLog() logrus.FieldLogger {
	l, _ := logtest.NewNullLogger()
	return l
}

func priceFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, feedURL string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Node.Backend = "memory"
	cfg.Node.BlockInterval = time.Second
	cfg.Feed.URL = feedURL
	cfg.Keys.Generate = true
	cfg.RPC.Listen = "127.0.0.1:0"
	cfg.RPC.RateLimit = 0
	cfg.Events.Driver = "sqlite"
	cfg.Events.DSN = filepath.Join(t.TempDir(), "events.db")
	return cfg
}

func newNode(t *testing.T, cfg *config.Config) *Node {
	t.Helper()
	n, err := New(context.Background(), cfg, nullLog())
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

func TestFetchedPriceReachesChain(t *testing.T) {
	feed := priceFeed(t, `{"USD":0.0123}`)
	n := newNode(t, testConfig(t, feed.URL))
	ctx := context.Background()

	// Block 1 triggers the worker, which queues a signed set_prices.
	_, err := n.Chain().ProduceBlock(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return n.Chain().QueueLen() == 1 }, 5*time.Second, 10*time.Millisecond)

	// Block 2 applies it.
	block, err := n.Chain().ProduceBlock(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, block.Receipts)
	assert.True(t, block.Receipts[0].Result.IsSuccess())

	current, err := n.Aggregator().CurrentPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixed.MustParse("0.0123"), current)
}

func TestUnregisteredLocalIdentityIsRejected(t *testing.T) {
	feed := priceFeed(t, `{"USD":1.5}`)
	cfg := testConfig(t, feed.URL)
	other, err := keystore.Generate(crypto.KeyTypeEd25519)
	require.NoError(t, err)
	cfg.Signers.Accounts = []string{other.Address()}

	n := newNode(t, cfg)
	ctx := context.Background()

	_, err = n.Chain().ProduceBlock(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return n.Chain().QueueLen() == 1 }, 5*time.Second, 10*time.Millisecond)
	_, err = n.Chain().ProduceBlock(ctx)
	require.NoError(t, err)

	current, err := n.Aggregator().CurrentPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixed.Zero, current)
}

func TestServicesArchiveFollowsConfig(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1/")
	n := newNode(t, cfg)
	assert.NotNil(t, n.Archive())
	assert.NotNil(t, n.Services().Archive)

	cfg = testConfig(t, "http://127.0.0.1:1/")
	cfg.Events.Driver = ""
	n = newNode(t, cfg)
	assert.Nil(t, n.Archive())
	assert.Nil(t, n.Services().Archive)
}

func TestHandlerServesPriceInfoAndMetrics(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1/")
	cfg.Offchain.Enabled = false
	n := newNode(t, cfg)

	srv := httptest.NewServer(n.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"method":"price_info","params":[{}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "success", out.Result["status"])
	assert.Equal(t, "0", out.Result["current_price"])

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	body, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestHandlerNilWhenRPCDisabled(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1/")
	cfg.RPC.Enabled = false
	n := newNode(t, cfg)
	assert.Nil(t, n.Handler())

	addr, err := n.Listen()
	require.NoError(t, err)
	assert.Empty(t, addr)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1/")
	n := newNode(t, cfg)

	addr, err := n.Listen()
	require.NoError(t, err)
	require.NotEmpty(t, addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoadKeys(t *testing.T) {
	id, err := keystore.Generate(crypto.KeyTypeSecp256k1)
	require.NoError(t, err)

	store, err := LoadKeys(config.KeysConfig{
		Identities: []config.KeyConfig{{Type: "secp256k1", Seed: id.SeedHex()}},
		Generate:   true,
		KeyType:    "ed25519",
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	got, ok := store.AnyLocalSigningIdentity()
	require.True(t, ok)
	assert.Equal(t, id.Address(), got.Address())

	store, err = LoadKeys(config.KeysConfig{Generate: true, KeyType: "ed25519"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	store, err = LoadKeys(config.KeysConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())

	_, err = LoadKeys(config.KeysConfig{Identities: []config.KeyConfig{{Type: "ed25519", Seed: "zz"}}})
	require.Error(t, err)
}
