// Package storage selects a key-value backend by name.
package storage

import (
	"fmt"
	"strings"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/LeJamon/goPriceOracle/internal/storage/database/leveldb"
	"github.com/LeJamon/goPriceOracle/internal/storage/database/memory"
	"github.com/LeJamon/goPriceOracle/internal/storage/database/pebble"
)

const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendPebble, BackendLevelDB, BackendMemory}

// NewManager returns a database manager rooted at dir. dir is ignored for the
// memory backend.
func NewManager(backend, dir string) (database.Manager, error) {
	switch strings.ToLower(backend) {
	case BackendPebble, "":
		return pebble.NewManager(dir), nil
	case BackendLevelDB:
		return leveldb.NewManager(dir), nil
	case BackendMemory:
		return memory.NewManager(), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}
