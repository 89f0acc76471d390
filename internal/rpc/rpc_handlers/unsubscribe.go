package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// UnsubscribeMethod handles the unsubscribe command (WebSocket only)
type UnsubscribeMethod struct{ guestMethod }

func (m *UnsubscribeMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return nil, rpc_types.RpcErrorNotSupported("unsubscribe is only available via WebSocket")
}
