package config

import (
	"fmt"
)

// ValidateConfig validates every section
func ValidateConfig(config *Config) error {
	if err := config.Node.Validate(); err != nil {
		return fmt.Errorf("node validation failed: %w", err)
	}
	if err := config.Feed.Validate(); err != nil {
		return fmt.Errorf("feed validation failed: %w", err)
	}
	if err := config.Offchain.Validate(); err != nil {
		return fmt.Errorf("offchain validation failed: %w", err)
	}
	if err := config.Keys.Validate(); err != nil {
		return fmt.Errorf("keys validation failed: %w", err)
	}
	if err := config.Signers.Validate(); err != nil {
		return fmt.Errorf("signers validation failed: %w", err)
	}
	if err := config.RPC.Validate(); err != nil {
		return fmt.Errorf("rpc validation failed: %w", err)
	}
	if err := config.Events.Validate(); err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}
	if err := config.Log.Validate(); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}
	return nil
}
