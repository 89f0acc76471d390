package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/LeJamon/goPriceOracle/internal/storage"
	"github.com/LeJamon/goPriceOracle/internal/storage/eventdb"
)

// NodeConfig represents the [node] section
type NodeConfig struct {
	DataDir       string        `toml:"data_dir" mapstructure:"data_dir"`
	Backend       string        `toml:"backend" mapstructure:"backend"`
	BlockInterval time.Duration `toml:"block_interval" mapstructure:"block_interval"`
	QueueSize     int           `toml:"queue_size" mapstructure:"queue_size"`
	MaxPerBlock   int           `toml:"max_per_block" mapstructure:"max_per_block"`
	ReplayCache   int           `toml:"replay_cache" mapstructure:"replay_cache"`
}

// Validate performs validation on the node configuration
func (n *NodeConfig) Validate() error {
	backendOK := false
	for _, b := range storage.Backends {
		if strings.EqualFold(n.Backend, b) {
			backendOK = true
			break
		}
	}
	if !backendOK {
		return fmt.Errorf("unknown backend %q (valid options: %s)", n.Backend, strings.Join(storage.Backends, ", "))
	}
	if !strings.EqualFold(n.Backend, storage.BackendMemory) && n.DataDir == "" {
		return fmt.Errorf("data_dir is required for backend %s", n.Backend)
	}
	if n.BlockInterval < time.Second {
		return fmt.Errorf("block_interval must be at least 1s, got %s", n.BlockInterval)
	}
	if n.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", n.QueueSize)
	}
	if n.MaxPerBlock < 0 {
		return fmt.Errorf("max_per_block must be non-negative, got %d", n.MaxPerBlock)
	}
	if n.ReplayCache <= 0 {
		return fmt.Errorf("replay_cache must be positive, got %d", n.ReplayCache)
	}
	return nil
}

// EventsConfig represents the [events] section. An empty driver disables
// the archive.
type EventsConfig struct {
	Driver  string        `toml:"driver" mapstructure:"driver"`
	DSN     string        `toml:"dsn" mapstructure:"dsn"`
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
	Buffer  int           `toml:"buffer" mapstructure:"buffer"`
}

// Enabled reports whether events are archived
func (e *EventsConfig) Enabled() bool {
	return e.Driver != ""
}

// Archive returns the eventdb settings
func (e *EventsConfig) Archive() eventdb.Config {
	return eventdb.Config{Driver: e.Driver, DSN: e.DSN, Timeout: e.Timeout}
}

// Validate performs validation on the events configuration
func (e *EventsConfig) Validate() error {
	if !e.Enabled() {
		return nil
	}
	if err := e.Archive().Validate(); err != nil {
		return err
	}
	if e.Buffer <= 0 {
		return fmt.Errorf("buffer must be positive, got %d", e.Buffer)
	}
	return nil
}
