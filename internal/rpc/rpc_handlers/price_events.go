package rpc_handlers

import (
	"encoding/json"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

const (
	defaultEventsLimit = 20
	maxEventsLimit     = 200
)

// PriceEventsMethod lists archived PriceStored events, newest first
type PriceEventsMethod struct {
	guestMethod
	Services *rpc_types.Services
}

func (m *PriceEventsMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		Limit int `json:"limit,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	limit, rpcErr := clampLimit(request.Limit, defaultEventsLimit, maxEventsLimit)
	if rpcErr != nil {
		return nil, rpcErr
	}

	if m.Services == nil || m.Services.Archive == nil {
		return nil, rpc_types.RpcErrorNotEnabled("event archive")
	}
	records, err := m.Services.Archive.Recent(ctx.Context, limit)
	if err != nil {
		return nil, rpc_types.RpcErrorInternal("Failed to read event archive: " + err.Error())
	}

	evs := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		evs = append(evs, map[string]interface{}{
			"height":      r.Height,
			"price":       r.Price.String(),
			"submitter":   r.Submitter,
			"snapshot":    r.Snapshot,
			"recorded_at": r.RecordedAt.Unix(),
		})
	}
	return map[string]interface{}{
		"events": evs,
		"limit":  limit,
	}, nil
}
