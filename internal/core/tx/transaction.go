// Package tx defines signed state-changing requests: their wire form,
// signing, and the engine that routes them to on-chain handlers.
package tx

import (
	"errors"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
)

// Common errors
var (
	ErrMissingRequiredField   = errors.New("missing required field")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidAccount         = errors.New("invalid account")
)

// Transaction is the interface that all request types must implement
type Transaction interface {
	// TxType returns the request type
	TxType() Type

	// GetCommon returns the common fields
	GetCommon() *Common

	// Validate checks the request's own fields (preflight)
	Validate() error
}

// Common holds the fields every request carries.
type Common struct {
	Account         string `json:"Account"`
	TransactionType string `json:"TransactionType"`
	SigningPubKey   string `json:"SigningPubKey,omitempty"`
	TxnSignature    string `json:"TxnSignature,omitempty"`
}

// Validate checks the common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return Errorf(TemBAD_SRC_ACCOUNT, "%v: Account", ErrMissingRequiredField)
	}
	if !crypto.IsValidAddress(c.Account) {
		return Errorf(TemBAD_SRC_ACCOUNT, "%v: %s", ErrInvalidAccount, c.Account)
	}
	if _, ok := TypeFromName(c.TransactionType); !ok {
		return Errorf(TemUNKNOWN, "%v: %q", ErrInvalidTransactionType, c.TransactionType)
	}
	return nil
}

// BaseTx is embedded by every request type.
type BaseTx struct {
	Common
	txType Type
}

// TxType returns the request type
func (b *BaseTx) TxType() Type {
	return b.txType
}

// GetCommon returns the common fields
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate validates the base request
func (b *BaseTx) Validate() error {
	if err := b.Common.Validate(); err != nil {
		return err
	}
	if b.TransactionType != b.txType.String() {
		return Errorf(TemMALFORMED, "TransactionType %q does not match %s", b.TransactionType, b.txType)
	}
	return nil
}

// NewBaseTx creates a new base request
func NewBaseTx(txType Type, account string) *BaseTx {
	return &BaseTx{
		Common: Common{
			Account:         account,
			TransactionType: txType.String(),
		},
		txType: txType,
	}
}
