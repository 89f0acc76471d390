// Package state persists the four oracle slots (current price, last snapshot
// height, price history, average price) plus the devnet block height.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/storage/database"
)

// Slot keys.
var (
	KeyCurrentPrice       = []byte("oracle/current_price")
	KeyLastSnapshotHeight = []byte("oracle/last_snapshot_height")
	KeyPriceHistory       = []byte("oracle/price_history")
	KeyAveragePrice       = []byte("oracle/average_price")
	KeyChainHeight        = []byte("chain/height")
)

// Snapshot is a read of every oracle slot.
type Snapshot struct {
	CurrentPrice       fixed.U16F16   `json:"current_price"`
	LastSnapshotHeight uint64         `json:"last_snapshot_height"`
	History            []fixed.U16F16 `json:"price_history"`
	AveragePrice       fixed.U16F16   `json:"average_price"`
}

// Update lists the slots to overwrite. Nil fields are left untouched.
type Update struct {
	CurrentPrice       *fixed.U16F16
	LastSnapshotHeight *uint64
	History            []fixed.U16F16
	AveragePrice       *fixed.U16F16
}

// Store reads and writes oracle slots on a database.DB. Missing keys read
// as genesis values.
type Store struct {
	db database.DB
}

func New(db database.DB) *Store {
	return &Store{db: db}
}

func (s *Store) read(ctx context.Context, key []byte) ([]byte, bool, error) {
	v, err := s.db.Read(ctx, key)
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) readPrice(ctx context.Context, key []byte) (fixed.U16F16, error) {
	b, ok, err := s.read(ctx, key)
	if err != nil || !ok {
		return fixed.Zero, err
	}
	return decodePrice(b)
}

func (s *Store) readHeight(ctx context.Context, key []byte) (uint64, error) {
	b, ok, err := s.read(ctx, key)
	if err != nil || !ok {
		return 0, err
	}
	return decodeHeight(b)
}

func (s *Store) CurrentPrice(ctx context.Context) (fixed.U16F16, error) {
	return s.readPrice(ctx, KeyCurrentPrice)
}

func (s *Store) AveragePrice(ctx context.Context) (fixed.U16F16, error) {
	return s.readPrice(ctx, KeyAveragePrice)
}

func (s *Store) LastSnapshotHeight(ctx context.Context) (uint64, error) {
	return s.readHeight(ctx, KeyLastSnapshotHeight)
}

// History returns the full price history, oldest first.
func (s *Store) History(ctx context.Context) ([]fixed.U16F16, error) {
	b, ok, err := s.read(ctx, KeyPriceHistory)
	if err != nil || !ok {
		return nil, err
	}
	return decodeHistory(b)
}

// Snapshot reads all four oracle slots.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.CurrentPrice, err = s.CurrentPrice(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.LastSnapshotHeight, err = s.LastSnapshotHeight(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.History, err = s.History(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.AveragePrice, err = s.AveragePrice(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Commit writes every set field of u in one atomic batch.
func (s *Store) Commit(ctx context.Context, u Update) error {
	var ops []database.BatchOperation
	if u.CurrentPrice != nil {
		ops = append(ops, database.Put(KeyCurrentPrice, encodePrice(*u.CurrentPrice)))
	}
	if u.LastSnapshotHeight != nil {
		ops = append(ops, database.Put(KeyLastSnapshotHeight, encodeHeight(*u.LastSnapshotHeight)))
	}
	if u.History != nil {
		b, err := encodeHistory(u.History)
		if err != nil {
			return err
		}
		ops = append(ops, database.Put(KeyPriceHistory, b))
	}
	if u.AveragePrice != nil {
		ops = append(ops, database.Put(KeyAveragePrice, encodePrice(*u.AveragePrice)))
	}
	if len(ops) == 0 {
		return nil
	}
	if err := s.db.Batch(ctx, ops); err != nil {
		return fmt.Errorf("commit oracle state: %w", err)
	}
	return nil
}

// Height returns the last produced block height, zero before the first block.
func (s *Store) Height(ctx context.Context) (uint64, error) {
	return s.readHeight(ctx, KeyChainHeight)
}

func (s *Store) SetHeight(ctx context.Context, h uint64) error {
	if err := s.db.Write(ctx, KeyChainHeight, encodeHeight(h)); err != nil {
		return fmt.Errorf("write chain height: %w", err)
	}
	return nil
}
