package rpc

import (
	"encoding/json"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// DefaultMaxClients bounds how many per-client limiters are tracked. The
// least recently seen client is forgotten first.
const DefaultMaxClients = 10000

// RateLimiter applies a token bucket per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	metrics  *metrics.Metrics
}

// NewRateLimiter allows rps requests per second with the given burst per
// client. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int, m *metrics.Metrics) (*RateLimiter, error) {
	cache, err := lru.New[string, *rate.Limiter](DefaultMaxClients)
	if err != nil {
		return nil, err
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: cache,
		rate:     rate.Limit(rps),
		burst:    burst,
		metrics:  m,
	}, nil
}

// Enabled reports whether requests are limited at all.
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.rate > 0
}

// Limiter returns the limiter for key, creating it on first use
func (rl *RateLimiter) Limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, limiter)
	}
	return limiter
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	if !rl.Enabled() {
		return true
	}
	return rl.Limiter(key).Allow()
}

// Middleware rejects requests over the limit with a slowDown error
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.Allow(getClientIP(r)) {
			next.ServeHTTP(w, r)
			return
		}
		rl.metrics.ObserveRateLimited()

		rpcErr := rpc_types.RpcErrorSlowDown("Too many requests. Please try again later.")
		body, _ := json.Marshal(map[string]interface{}{
			"result": map[string]interface{}{
				"status":        "error",
				"error":         rpcErr.ErrorString,
				"error_code":    rpcErr.Code,
				"error_message": rpcErr.Message,
			},
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write(body)
	})
}
