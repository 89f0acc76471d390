package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
)

// FeedConfig represents the [feed] section
type FeedConfig struct {
	URL          string        `toml:"url" mapstructure:"url"`
	Symbol       string        `toml:"symbol" mapstructure:"symbol"`
	Timeout      time.Duration `toml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// Validate performs validation on the feed configuration
func (f *FeedConfig) Validate() error {
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", f.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q", f.URL)
	}
	if strings.TrimSpace(f.Symbol) == "" {
		return fmt.Errorf("symbol is required")
	}
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", f.Timeout)
	}
	if f.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", f.MaxBodyBytes)
	}
	return nil
}

// OffchainConfig represents the [offchain] section
type OffchainConfig struct {
	Enabled     bool `toml:"enabled" mapstructure:"enabled"`
	Concurrency int  `toml:"concurrency" mapstructure:"concurrency"`
}

// Validate performs validation on the off-chain worker configuration
func (o *OffchainConfig) Validate() error {
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", o.Concurrency)
	}
	return nil
}

// KeyConfig is one local signing identity
type KeyConfig struct {
	Type string `toml:"type" mapstructure:"type"`
	Seed string `toml:"seed" mapstructure:"seed"`
}

// KeysConfig represents the [keys] section. Generate creates an ephemeral
// identity at startup when no identity is configured.
type KeysConfig struct {
	Identities []KeyConfig `toml:"identities" mapstructure:"identities"`
	Generate   bool        `toml:"generate" mapstructure:"generate"`
	KeyType    string      `toml:"key_type" mapstructure:"key_type"`
}

// Validate performs validation on the keys configuration
func (k *KeysConfig) Validate() error {
	for i, id := range k.Identities {
		if _, err := crypto.ParseKeyType(id.Type); err != nil {
			return fmt.Errorf("identity %d: %w", i, err)
		}
		if strings.TrimSpace(id.Seed) == "" {
			return fmt.Errorf("identity %d: seed is required", i)
		}
	}
	if k.Generate {
		if _, err := crypto.ParseKeyType(k.KeyType); err != nil {
			return fmt.Errorf("key_type: %w", err)
		}
	}
	return nil
}
