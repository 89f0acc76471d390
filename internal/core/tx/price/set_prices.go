// Package price holds the set_prices request and its on-chain handler.
package price

import (
	"context"
	"errors"

	"github.com/LeJamon/goPriceOracle/internal/core/aggregator"
	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/LeJamon/goPriceOracle/internal/core/tx"
)

func init() {
	tx.Register(tx.TypeSetPrices, func() tx.Transaction {
		return &SetPrices{BaseTx: *tx.NewBaseTx(tx.TypeSetPrices, "")}
	})
}

// SetPrices submits a price observed off-chain at BlockNumber.
type SetPrices struct {
	tx.BaseTx

	Price       fixed.U16F16 `json:"Price"`
	BlockNumber uint64       `json:"BlockNumber"`
}

// NewSetPrices builds an unsigned request.
func NewSetPrices(price fixed.U16F16, blockNumber uint64) *SetPrices {
	return &SetPrices{
		BaseTx:      *tx.NewBaseTx(tx.TypeSetPrices, ""),
		Price:       price,
		BlockNumber: blockNumber,
	}
}

// TxType returns the price submission type.
func (s *SetPrices) TxType() tx.Type {
	return tx.TypeSetPrices
}

// Applier is the on-chain state machine a SetPrices is applied to.
type Applier interface {
	Apply(ctx context.Context, origin aggregator.Origin, price fixed.U16F16, height uint64) error
}

// Handler applies SetPrices requests.
type Handler struct {
	applier Applier
}

// NewHandler routes SetPrices requests to a.
func NewHandler(a Applier) *Handler {
	return &Handler{applier: a}
}

// Apply stores the price for the request signer. Only an unregistered
// signer is rejected.
func (h *Handler) Apply(ctx context.Context, actx *tx.ApplyContext, t tx.Transaction) tx.Result {
	req, ok := t.(*SetPrices)
	if !ok {
		return tx.TefINTERNAL
	}
	err := h.applier.Apply(ctx, aggregator.Signed(actx.Signer), req.Price, req.BlockNumber)
	switch {
	case err == nil:
		return tx.TesSUCCESS
	case errors.Is(err, aggregator.ErrUnauthorized):
		return tx.TefBAD_AUTH
	default:
		actx.Log.WithError(err).Error("set_prices failed")
		return tx.TefINTERNAL
	}
}
