package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets every default value
func setDefaults(v *viper.Viper) {
	// 1. Node defaults
	v.SetDefault("node.data_dir", "./data")
	v.SetDefault("node.backend", "pebble")
	v.SetDefault("node.block_interval", 6*time.Second)
	v.SetDefault("node.queue_size", 256)
	v.SetDefault("node.max_per_block", 0) // 0 means drain the whole queue
	v.SetDefault("node.replay_cache", 4096)

	// 2. Feed and off-chain worker defaults
	v.SetDefault("feed.url", "https://min-api.cryptocompare.com/data/price")
	v.SetDefault("feed.symbol", "TFT")
	v.SetDefault("feed.timeout", 2000*time.Millisecond)
	v.SetDefault("feed.max_body_bytes", 64<<10)
	v.SetDefault("offchain.enabled", true)
	v.SetDefault("offchain.concurrency", 1)

	// 3. Keys and signers defaults
	v.SetDefault("keys.generate", false)
	v.SetDefault("keys.key_type", "ed25519")
	v.SetDefault("signers.accounts", []string{})

	// 4. RPC defaults
	v.SetDefault("rpc.enabled", true)
	v.SetDefault("rpc.listen", "127.0.0.1:5005")
	v.SetDefault("rpc.timeout", 30*time.Second)
	v.SetDefault("rpc.rate_limit", 20.0)
	v.SetDefault("rpc.rate_burst", 40)

	// 5. Event archive defaults (disabled)
	v.SetDefault("events.driver", "")
	v.SetDefault("events.dsn", "")
	v.SetDefault("events.timeout", 5*time.Second)
	v.SetDefault("events.buffer", 256)

	// 6. Diagnostics defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
