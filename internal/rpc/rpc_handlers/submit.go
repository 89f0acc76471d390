package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// SubmitMethod handles the submit RPC method. Only signed blobs are
// accepted; the node never signs on behalf of a caller.
type SubmitMethod struct {
	guestMethod
	Services *rpc_types.Services
}

func (m *SubmitMethod) Handle(ctx *rpc_types.RpcContext, params json.RawMessage) (interface{}, *rpc_types.RpcError) {
	var request struct {
		TxBlob string `json:"tx_blob,omitempty"`
	}
	if rpcErr := parseParams(params, &request); rpcErr != nil {
		return nil, rpcErr
	}
	if request.TxBlob == "" {
		return nil, rpc_types.RpcErrorMissingField("tx_blob")
	}

	blob, err := hex.DecodeString(strings.TrimSpace(request.TxBlob))
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidField("tx_blob")
	}
	t, err := tx.Decode(blob)
	if err != nil {
		return nil, rpc_types.RpcErrorInvalidParams("Failed to decode tx_blob: " + err.Error())
	}

	if m.Services == nil || m.Services.Chain == nil {
		return nil, rpc_types.RpcErrorInternal("Chain service not available")
	}

	res := m.Services.Chain.Submit(t)
	response := map[string]interface{}{
		"engine_result":         res.String(),
		"engine_result_code":    int(res),
		"engine_result_message": res.Message(),
		"tx_blob":               strings.ToUpper(request.TxBlob),
		"tx_json":               t,
		"accepted":              res.IsSuccess(),
	}
	if hash, err := tx.Hash(t); err == nil {
		response["hash"] = FormatHash(hash)
	}
	return response, nil
}
