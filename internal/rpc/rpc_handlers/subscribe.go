package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// SubscribeMethod handles the subscribe command (WebSocket only)
type SubscribeMethod struct{ guestMethod }

func (m *SubscribeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	// The WebSocket server intercepts subscribe before dispatch.
	return nil, rpc_types.RpcErrorNotSupported("subscribe is only available via WebSocket")
}
