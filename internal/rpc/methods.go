package rpc

import (
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_handlers"
	"github.com/LeJamon/goPriceOracle/internal/rpc/rpc_types"
)

// registerAllMethods registers every RPC method against svc
func registerAllMethods(registry *rpc_types.MethodRegistry, svc *rpc_types.Services) {
	// Server Information Methods
	registry.Register("server_info", &rpc_handlers.ServerInfoMethod{Services: svc})
	registry.Register("ping", &rpc_handlers.PingMethod{})
	registry.Register("version", &rpc_handlers.VersionMethod{})

	// Oracle Methods
	registry.Register("price_info", &rpc_handlers.PriceInfoMethod{Services: svc})
	registry.Register("price_history", &rpc_handlers.PriceHistoryMethod{Services: svc})
	registry.Register("price_events", &rpc_handlers.PriceEventsMethod{Services: svc})

	// Transaction Methods
	registry.Register("submit", &rpc_handlers.SubmitMethod{Services: svc})

	// Subscription Methods (WebSocket only)
	registry.Register("subscribe", &rpc_handlers.SubscribeMethod{})
	registry.Register("unsubscribe", &rpc_handlers.UnsubscribeMethod{})
}
