package config

import (
	"path/filepath"
)

// DefaultConfigFile is looked up by LoadDefaultConfig.
const DefaultConfigFile = "priced.toml"

// Config is the complete node configuration
type Config struct {
	// 1. Node: storage and the devnet host
	Node NodeConfig `toml:"node" mapstructure:"node"`

	// 2. Off-chain price feed and worker
	Feed     FeedConfig     `toml:"feed" mapstructure:"feed"`
	Offchain OffchainConfig `toml:"offchain" mapstructure:"offchain"`

	// 3. Local signing identities and the registered signer set
	Keys    KeysConfig    `toml:"keys" mapstructure:"keys"`
	Signers SignersConfig `toml:"signers" mapstructure:"signers"`

	// 4. Query surface
	RPC RPCConfig `toml:"rpc" mapstructure:"rpc"`

	// 5. Event archive
	Events EventsConfig `toml:"events" mapstructure:"events"`

	// 6. Diagnostics
	Log LogConfig `toml:"log" mapstructure:"log"`

	configPath string `toml:"-" mapstructure:"-"`
}

// GetConfigPath returns the file the configuration was read from, or ""
// when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ConfigPathFromDir returns the configuration path inside configDir
func ConfigPathFromDir(configDir string) string {
	return filepath.Join(configDir, DefaultConfigFile)
}
