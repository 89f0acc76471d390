package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// HandlerConfig wires the HTTP endpoints.
type HandlerConfig struct {
	RPC       *Server
	WebSocket *WebSocketServer
	Limiter   *RateLimiter
	Gatherer  prometheus.Gatherer
	Chain     rpc_types.ChainService
}

// NewHandler routes /, /rpc, /ws, /metrics and /health. JSON-RPC endpoints
// are rate limited per client.
func NewHandler(cfg HandlerConfig) http.Handler {
	mux := http.NewServeMux()

	rpcHandler := cfg.Limiter.Middleware(cfg.RPC)
	mux.Handle("/", rpcHandler)
	mux.Handle("/rpc", rpcHandler)
	if cfg.WebSocket != nil {
		mux.Handle("/ws", cfg.WebSocket)
	}
	if cfg.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "ok", "service": "priced"}
		if cfg.Chain != nil {
			body["block_height"] = cfg.Chain.Height()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	})
	return mux
}

// HTTPServer runs the node's HTTP listener
type HTTPServer struct {
	srv *http.Server
	ln  net.Listener
	log logrus.FieldLogger
}

// Listen binds addr. Serving starts with Serve.
func Listen(addr string, handler http.Handler, log logrus.FieldLogger) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &HTTPServer{
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ln:  ln,
		log: log.WithField("module", "http"),
	}, nil
}

// Addr returns the bound address.
func (s *HTTPServer) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until Shutdown.
func (s *HTTPServer) Serve() error {
	s.log.WithField("addr", s.Addr()).Info("serving JSON-RPC and WebSocket")
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Close releases the listener without waiting for in-flight requests. It
// is safe whether or not Serve ran.
func (s *HTTPServer) Close() error {
	err := s.srv.Close()
	if lnErr := s.ln.Close(); lnErr != nil && !errors.Is(lnErr, net.ErrClosed) && err == nil {
		err = lnErr
	}
	return err
}
