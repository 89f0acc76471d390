// Package memory is a map-backed database for tests and ephemeral devnets.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
)

type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewDB() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *DB) Write(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *DB) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	delete(m.data, string(key))
	return nil
}

func (m *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrDBClosed
	}
	// Validate first so a bad op leaves nothing applied.
	for _, op := range ops {
		if op.Type != database.BatchPut && op.Type != database.BatchDelete {
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	for _, op := range ops {
		if op.Type == database.BatchPut {
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		} else {
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// Iterator takes a snapshot of the matching range; later writes are not visible.
func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrDBClosed
	}

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		kb := []byte(k)
		if start != nil && bytes.Compare(kb, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = append([]byte(nil), m.data[k]...)
	}
	return &iterator{keys: keys, values: values, pos: -1}, nil
}

// Close marks the database closed. Further calls return ErrDBClosed.
func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}

type iterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *iterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.values) {
		return nil
	}
	return it.values[it.pos]
}

func (it *iterator) Error() error { return nil }
func (it *iterator) Close() error { return nil }

// Manager hands out named in-memory databases.
type Manager struct {
	mu  sync.Mutex
	dbs map[string]*DB
}

func NewManager() *Manager {
	return &Manager{dbs: make(map[string]*DB)}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if db, ok := m.dbs[name]; ok {
		return db, nil
	}
	db := NewDB()
	m.dbs[name] = db
	return db, nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	db, ok := m.dbs[name]
	if !ok {
		return fmt.Errorf("database %s not found", name)
	}
	delete(m.dbs, name)
	return db.Close()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, db := range m.dbs {
		_ = db.Close()
		delete(m.dbs, name)
	}
	return nil
}
