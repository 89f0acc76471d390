package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// VersionMethod returns the supported API version range
type VersionMethod struct{ guestMethod }

func (m *VersionMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	return map[string]interface{}{
		"version": map[string]interface{}{
			"first": rpc_types.ApiVersion1,
			"last":  rpc_types.ApiVersion2,
			"good":  rpc_types.DefaultApiVersion,
		},
	}, nil
}
