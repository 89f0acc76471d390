package rpc_types

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// API Version constants
const (
	ApiVersion1       = 1
	ApiVersion2       = 2
	DefaultApiVersion = ApiVersion1
)

// Role-based access control
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleAdmin
)

// RpcContext contains request-specific information
type RpcContext struct {
	Context    context.Context
	Role       Role
	ApiVersion int
	IsAdmin    bool
	ClientIP   string
}

// MethodHandler is implemented by every RPC method
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError)
	RequiredRole() Role
	SupportedApiVersions() []int
}

// MethodRegistry maps method names to handlers
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{
		methods: make(map[string]MethodHandler),
	}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.methods[name]
	return handler, exists
}

// List returns the registered method names, sorted.
func (r *MethodRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}

// Request is a JSON-RPC request.
// Format: {"method": "method_name", "params": [{...}]}
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// WebSocketCommand is the head of a websocket request
type WebSocketCommand struct {
	Command string      `json:"command"`
	ID      interface{} `json:"id,omitempty"`
}

// WebSocketResponse is a websocket reply
type WebSocketResponse struct {
	Status       string      `json:"status"`
	Type         string      `json:"type"`
	Result       interface{} `json:"result,omitempty"`
	ID           interface{} `json:"id,omitempty"`
	Error        string      `json:"error,omitempty"`
	ErrorCode    int         `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// SubscriptionType names a websocket stream
type SubscriptionType string

const (
	SubPrices SubscriptionType = "prices"
	SubBlocks SubscriptionType = "blocks"
)

// SubscriptionRequest is the body of subscribe and unsubscribe
type SubscriptionRequest struct {
	Streams []SubscriptionType `json:"streams,omitempty"`
}

// StreamMessage is pushed to subscribers
type StreamMessage struct {
	Type      string `json:"type"`
	Price     string `json:"price,omitempty"`
	Submitter string `json:"submitter,omitempty"`
	Height    uint64 `json:"height"`
	Snapshot  bool   `json:"snapshot,omitempty"`
}
