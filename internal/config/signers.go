package config

import (
	"fmt"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
)

// SignersConfig represents the [signers] section: the addresses allowed to
// submit prices. When empty the node's local identities are registered.
type SignersConfig struct {
	Accounts []string `toml:"accounts" mapstructure:"accounts"`
}

// Validate performs validation on the signers configuration
func (s *SignersConfig) Validate() error {
	seen := make(map[string]struct{}, len(s.Accounts))
	for i, addr := range s.Accounts {
		if !crypto.IsValidAddress(addr) {
			return fmt.Errorf("invalid signer at index %d: %q", i, addr)
		}
		if _, dup := seen[addr]; dup {
			return fmt.Errorf("duplicate signer at index %d: %s", i, addr)
		}
		seen[addr] = struct{}{}
	}
	return nil
}
