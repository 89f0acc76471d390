package rpc_types

import (
	"context"
	"time"

	"github.com/LeJamon/goPriceOracle/internal/core/state"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
	"github.com/LeJamon/goPriceOracle/internal/storage/eventdb"
)

// OracleReader exposes the persisted price slots.
type OracleReader interface {
	Snapshot(ctx context.Context) (state.Snapshot, error)
}

// ChainService is the devnet host as seen by RPC.
type ChainService interface {
	Height() uint64
	QueueLen() int
	Submit(t tx.Transaction) tx.Result
}

// EventArchive serves archived PriceStored events.
type EventArchive interface {
	Recent(ctx context.Context, limit int) ([]eventdb.Record, error)
}

// SignerSet lists registered signers.
type SignerSet interface {
	List() []string
}

// Services are the node components RPC handlers read from. Archive may be
// nil when archiving is disabled.
type Services struct {
	Oracle  OracleReader
	Chain   ChainService
	Archive EventArchive
	Signers SignerSet
	Version string
	Started time.Time
}
