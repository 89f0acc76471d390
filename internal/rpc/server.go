package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/LeJamon/goPriceOracle/internal/metrics"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// maxRequestBody bounds a JSON-RPC request body.
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *rpc_types.MethodRegistry
	timeout  time.Duration
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

type options struct {
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

type Option func(*options)

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewServer creates a new RPC server with the given per-request timeout
func NewServer(svc *rpc_types.Services, timeout time.Duration, opts ...Option) *Server {
	o := buildOptions(opts)
	server := &Server{
		registry: rpc_types.NewMethodRegistry(),
		timeout:  timeout,
		log:      o.log.WithField("module", "rpc"),
		metrics:  o.metrics,
	}
	registerAllMethods(server.registry, svc)
	return server
}

// Methods lists the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest processes GET requests with query parameters
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		// Default to server_info for GET requests without command
		method = "server_info"
	}

	ctx := s.newContext(r)
	result, rpcErr := s.Execute(ctx, method, nil)
	s.writeResponse(w, method, nil, result, rpcErr)
}

// handlePostRequest processes POST requests with a JSON-RPC payload
func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, rpc_types.RpcErrorInternal("Failed to read request body"), nil)
		return
	}

	var request rpc_types.Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, rpc_types.NewRpcError(rpc_types.RpcINVALID_PARAMS, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()), nil)
		return
	}
	if request.Method == "" {
		s.writeError(w, rpc_types.RpcErrorMissingCommand(), nil)
		return
	}

	// params is an array with one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	ctx := s.newContext(r)
	var paramsMap map[string]interface{}
	if params != nil {
		if err := json.Unmarshal(params, &paramsMap); err == nil {
			if ver, ok := paramsMap["api_version"].(float64); ok {
				ctx.ApiVersion = int(ver)
			}
		}
	}

	result, rpcErr := s.Execute(ctx, request.Method, params)

	requestObj := map[string]interface{}{"command": request.Method}
	for k, v := range paramsMap {
		requestObj[k] = v
	}
	s.writeResponse(w, request.Method, requestObj, result, rpcErr)
}

func (s *Server) newContext(r *http.Request) *rpc_types.RpcContext {
	return &rpc_types.RpcContext{
		Context:    r.Context(),
		Role:       rpc_types.RoleGuest,
		ApiVersion: rpc_types.DefaultApiVersion,
		ClientIP:   getClientIP(r),
	}
}

// Execute runs method under the server timeout. It is shared by the HTTP
// and WebSocket transports.
func (s *Server) Execute(ctx *rpc_types.RpcContext, method string, params json.RawMessage) (result interface{}, rpcErr *rpc_types.RpcError) {
	defer func() {
		status := "success"
		if rpcErr != nil {
			status = rpcErr.ErrorString
		}
		s.metrics.ObserveRPC(method, status)
	}()

	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, rpc_types.RpcErrorMethodNotFound(method)
	}

	if ctx.Role < handler.RequiredRole() {
		return nil, rpc_types.NewRpcError(rpc_types.RpcGENERAL, "noPermission", "noPermission",
			"Method '"+method+"' requires higher privileges")
	}

	if supported := handler.SupportedApiVersions(); len(supported) > 0 {
		ok := false
		for _, version := range supported {
			if ctx.ApiVersion == version {
				ok = true
				break
			}
		}
		if !ok {
			return nil, rpc_types.RpcErrorInvalidApiVersion(strconv.Itoa(ctx.ApiVersion))
		}
	}

	parent := ctx.Context
	if parent == nil {
		parent = context.Background()
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx.Context, cancel = context.WithTimeout(parent, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{"method": method, "panic": r}).Error("rpc handler panicked")
			result, rpcErr = nil, rpc_types.RpcErrorInternal("internal error")
		}
	}()
	return handler.Handle(ctx, params)
}

// writeResponse writes a JSON-RPC response:
// result.status is "success" or "error" and error fields sit inside result.
func (s *Server) writeResponse(w http.ResponseWriter, method string, request interface{}, result interface{}, rpcErr *rpc_types.RpcError) {
	if rpcErr != nil {
		s.writeError(w, rpcErr, request)
		return
	}

	var resultObj map[string]interface{}
	if m, ok := result.(map[string]interface{}); ok {
		resultObj = m
	} else {
		resultObj = map[string]interface{}{"data": result}
	}
	resultObj["status"] = "success"
	s.write(w, map[string]interface{}{"result": resultObj})
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, rpcErr *rpc_types.RpcError, request interface{}) {
	resultObj := map[string]interface{}{
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if request != nil {
		resultObj["request"] = request
	}
	s.write(w, map[string]interface{}{"result": resultObj})
}

func (s *Server) write(w http.ResponseWriter, response map[string]interface{}) {
	responseData, err := json.Marshal(response)
	if err != nil {
		s.log.WithError(err).Error("failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(responseData)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
