package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// PriceHistoryMethod pages through the snapshot history, oldest first
type PriceHistoryMethod struct {
	guestMethod
	Services *rpc_types.Services
}

func (m *PriceHistoryMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Limit  int `json:"limit,omitempty"`
		Offset int `json:"offset,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	limit, rpcErr := clampLimit(request.Limit, defaultHistoryLimit, maxHistoryLimit)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if request.Offset < 0 {
		return nil, rpc_types.RpcErrorInvalidField("offset")
	}

	if m.Services == nil || m.Services.Oracle == nil {
		return nil, rpc_types.RpcErrorInternal("Oracle state not available")
	}
	snap, err := m.Services.Oracle.Snapshot(ctx.Context)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to read oracle state: " + err.Error())
	}

	total := len(snap.History)
	start := request.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := make([]string, 0, end-start)
	for _, p := range snap.History[start:end] {
		page = append(page, p.String())
	}

	return map[string]interface{}{
		"history":       page,
		"total":         total,
		"limit":         limit,
		"offset":        start,
		"average_price": snap.AveragePrice.String(),
	}, nil
}
