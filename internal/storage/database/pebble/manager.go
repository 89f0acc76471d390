package pebble

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
)

// DefaultCacheSize is the block cache shared by every database a Manager
// opens.
const DefaultCacheSize = 8 << 20

// Manager opens named pebble databases under one directory.
type Manager struct {
	mu    sync.Mutex
	dir   string
	cache *pebble.Cache
	open  map[string]*pebble.DB
}

// NewManager returns a manager rooted at dir. The directory is created on
// the first OpenDB.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		cache: pebble.NewCache(DefaultCacheSize),
		open:  make(map[string]*pebble.DB),
	}
}

// OpenDB opens <dir>/<name>.db, reusing the handle if it is already open.
func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		return nil, database.ErrDBClosed
	}
	if db, ok := m.open[name]; ok {
		return NewDB(db), nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", m.dir, err)
	}
	db, err := pebble.Open(filepath.Join(m.dir, name+".db"), &pebble.Options{Cache: m.cache})
	if err != nil {
		return nil, fmt.Errorf("open pebble db %s: %w", name, err)
	}
	m.open[name] = db
	return NewDB(db), nil
}

// CloseDB closes one database. Handles returned for it must not be used
// afterwards.
func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, ok := m.open[name]
	if !ok {
		return fmt.Errorf("pebble db %s is not open", name)
	}
	delete(m.open, name)
	return db.Close()
}

// Close closes every open database and releases the shared cache. It is
// idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open == nil {
		return nil
	}
	var errs []error
	for name, db := range m.open {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pebble db %s: %w", name, err))
		}
	}
	m.open = nil
	m.cache.Unref()
	return errors.Join(errs...)
}
