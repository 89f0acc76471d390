package rpc_handlers

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// guestMethod is embedded by methods open to every caller.
type guestMethod struct{}

func (guestMethod) RequiredRole() rpc_types.Role {
	return rpc_types.RoleGuest
}

func (guestMethod) SupportedApiVersions() []int {
	return []int{rpc_types.ApiVersion1, rpc_types.ApiVersion2}
}

// FormatHash formats a 32-byte hash as upper-case hex
func FormatHash(hash [32]byte) string {
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

// parseParams decodes params into dst. Empty params leave dst untouched.
func parseParams(params json.RawMessage, dst interface{}) *rpc_types.RpcError {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return rpc_types.RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

// clampLimit applies a default and an upper bound to a page size.
func clampLimit(limit, def, max int) (int, *rpc_types.RpcError) {
	switch {
	case limit < 0:
		return 0, rpc_types.RpcErrorInvalidField("limit")
	case limit == 0:
		return def, nil
	case limit > max:
		return max, nil
	default:
		return limit, nil
	}
}
