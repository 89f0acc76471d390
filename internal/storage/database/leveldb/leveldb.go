// Package leveldb stores oracle state in a goleveldb database.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var syncWrite = &opt.WriteOptions{Sync: true}

type DB struct {
	db *leveldb.DB
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, database.ErrDBClosed
	}
	val, err := l.db.Get(key, nil)
	if err != nil {
		return nil, mapErr(err)
	}
	return val, nil
}

func (l *DB) Write(ctx context.Context, key, value []byte) error {
	if l.db == nil {
		return database.ErrDBClosed
	}
	return mapErr(l.db.Put(key, value, syncWrite))
}

func (l *DB) Delete(ctx context.Context, key []byte) error {
	if l.db == nil {
		return database.ErrDBClosed
	}
	return mapErr(l.db.Delete(key, syncWrite))
}

func (l *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if l.db == nil {
		return database.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
	}
	return mapErr(l.db.Write(batch, syncWrite))
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if l.db == nil {
		return nil, database.ErrDBClosed
	}
	return &Iterator{iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, leveldb.ErrNotFound):
		return database.ErrKeyNotFound
	case errors.Is(err, leveldb.ErrClosed):
		return database.ErrDBClosed
	default:
		return err
	}
}

type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool { return it.iter.Next() }

func (it *Iterator) Key() []byte {
	if k := it.iter.Key(); k != nil {
		return append([]byte(nil), k...)
	}
	return nil
}

func (it *Iterator) Value() []byte {
	if v := it.iter.Value(); v != nil {
		return append([]byte(nil), v...)
	}
	return nil
}

func (it *Iterator) Error() error { return it.iter.Error() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}

type Manager struct {
	dbs  map[string]*leveldb.DB
	path string
	mu   sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		dbs:  make(map[string]*leveldb.DB),
		path: path,
	}
}

func (m *Manager) OpenDB(name string) (database.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if db, exists := m.dbs[name]; exists {
		return NewDB(db), nil
	}

	db, err := leveldb.OpenFile(filepath.Join(m.path, name+".ldb"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", name, err)
	}
	m.dbs[name] = db
	return NewDB(db), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	db, exists := m.dbs[name]
	if !exists {
		return fmt.Errorf("database %s not found", name)
	}
	if err := db.Close(); err != nil {
		return err
	}
	delete(m.dbs, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error
	for name, db := range m.dbs {
		if err := db.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close database %s: %w", name, err)
		}
		delete(m.dbs, name)
	}
	return lastErr
}
