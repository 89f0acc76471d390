package rpc_handlers

import (
	"encoding/json"
	"time"

	"github.com/LeJamon/goPriceOracle/internal/core/aggregator"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// ServerInfoMethod reports node and chain status
type ServerInfoMethod struct {
	guestMethod
	Services *rpc_types.Services
}

func (m *ServerInfoMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	svc := m.Services
	if svc == nil || svc.Chain == nil {
		return nil, rpc_types.RpcErrorInternal("Chain service not available")
	}

	info := map[string]interface{}{
		"build_version":     svc.Version,
		"server_state":      "full",
		"block_height":      svc.Chain.Height(),
		"queue_depth":       svc.Chain.QueueLen(),
		"snapshot_interval": aggregator.SnapshotInterval,
		"archive_enabled":   svc.Archive != nil,
	}
	if !svc.Started.IsZero() {
		info["uptime"] = int64(time.Since(svc.Started).Seconds())
	}
	if svc.Signers != nil {
		info["signers"] = len(svc.Signers.List())
	}

	return map[string]interface{}{"info": info}, nil
}
