package config

import (
	"fmt"
	"net"
	"time"
)

// RPCConfig represents the [rpc] section
type RPCConfig struct {
	Enabled   bool          `toml:"enabled" mapstructure:"enabled"`
	Listen    string        `toml:"listen" mapstructure:"listen"`
	Timeout   time.Duration `toml:"timeout" mapstructure:"timeout"`
	RateLimit float64       `toml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst int           `toml:"rate_burst" mapstructure:"rate_burst"`
}

// Validate performs validation on the RPC configuration
func (r *RPCConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(r.Listen); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", r.Listen, err)
	}
	if r.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", r.Timeout)
	}
	if r.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", r.RateLimit)
	}
	if r.RateLimit > 0 && r.RateBurst < 1 {
		return fmt.Errorf("rate_burst must be at least 1 when rate_limit is set, got %d", r.RateBurst)
	}
	return nil
}
