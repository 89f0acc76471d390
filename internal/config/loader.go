package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PRICED_FEED_SYMBOL.
const EnvPrefix = "PRICED"

// LoadConfig loads configuration from multiple sources in priority order:
// 1. Default values
// 2. Configuration file (priced.toml), skipped when path is empty
// 3. Environment variables (PRICED_ prefix)
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults first
	setDefaults(v)

	// 2. Load main configuration file
	if path != "" {
		if err := loadMainConfig(v, path); err != nil {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
	}

	// 3. Set up environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Unmarshal into struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.configPath = path

	// 5. Validate the complete configuration
	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadMainConfig loads the main configuration file
func loadMainConfig(v *viper.Viper, configPath string) error {
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	return nil
}

// LoadConfigFromDir loads priced.toml from configDir
func LoadConfigFromDir(configDir string) (*Config, error) {
	return LoadConfig(ConfigPathFromDir(configDir))
}

// LoadDefaultConfig loads priced.toml from the working directory when it
// exists, defaults otherwise.
func LoadDefaultConfig() (*Config, error) {
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return LoadConfig(DefaultConfigFile)
	}
	return LoadConfig("")
}

// ReloadConfig reloads configuration from the same path
func ReloadConfig(existingConfig *Config) (*Config, error) {
	return LoadConfig(existingConfig.GetConfigPath())
}

// SaveExampleConfig writes an example configuration file
func SaveExampleConfig(configPath string) error {
	v := viper.New()
	setDefaults(v)
	for key, value := range generateExampleConfig() {
		v.Set(key, value)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write example config: %w", err)
	}
	return nil
}

// generateExampleConfig generates example configuration values
func generateExampleConfig() map[string]interface{} {
	return map[string]interface{}{
		"node.data_dir":       "/var/lib/priced",
		"node.backend":        "pebble",
		"node.block_interval": "6s",

		"feed.symbol":  "TFT",
		"feed.timeout": "2s",

		"keys.generate": true,
		"keys.key_type": "ed25519",

		"rpc.listen": "127.0.0.1:5005",

		"events.driver": "sqlite",
		"events.dsn":    "/var/lib/priced/events.db",

		"log.level":  "info",
		"log.format": "text",
	}
}
