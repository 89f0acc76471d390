package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// PriceInfoMethod returns the persisted price slots
type PriceInfoMethod struct {
	guestMethod
	Services *rpc_types.Services
}

func (m *PriceInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	if m.Services == nil || m.Services.Oracle == nil {
		return nil, rpc_types.RpcErrorInternal("Oracle state not available")
	}
	snap, err := m.Services.Oracle.Snapshot(ctx.Context)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to read oracle state: " + err.Error())
	}

	result := map[string]interface{}{
		"current_price":        snap.CurrentPrice.String(),
		"average_price":        snap.AveragePrice.String(),
		"last_snapshot_height": snap.LastSnapshotHeight,
		"history_length":       len(snap.History),
	}
	if m.Services.Chain != nil {
		result["block_height"] = m.Services.Chain.Height()
	}
	return result, nil
}
