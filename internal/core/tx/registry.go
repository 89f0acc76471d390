package tx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ugorji/go/codec"

	crypto "github.com/LeJamon/goPriceOracle/internal/crypto/common"
	"github.com/LeJamon/goPriceOracle/internal/protocol"
)

// ErrUnknownTransactionType is returned when a request type is unknown
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// Factory returns an empty request of one type.
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)

	wire = &codec.MsgpackHandle{}
)

// Hash prefixes
var (
	prefixTxID = protocol.HashPrefixTransactionID[:]
	prefixSign = protocol.HashPrefixTxSign[:]
)

// Register makes a request type decodable. Called from init.
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = f
}

// NewFromType creates a new request of the given type
func NewFromType(t Type) (Transaction, error) {
	registryMu.RLock()
	f, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTransactionType, t)
	}
	return f(), nil
}

// Encode returns the msgpack wire form.
func Encode(t Transaction) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, wire).Encode(t); err != nil {
		return nil, fmt.Errorf("encode %s: %w", t.TxType(), err)
	}
	return out, nil
}

// Decode parses the wire form, dispatching on TransactionType.
func Decode(data []byte) (Transaction, error) {
	var head struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := codec.NewDecoderBytes(data, wire).Decode(&head); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}

	txType, ok := TypeFromName(head.TransactionType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransactionType, head.TransactionType)
	}
	t, err := NewFromType(txType)
	if err != nil {
		return nil, err
	}
	if err := codec.NewDecoderBytes(data, wire).Decode(t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", txType, err)
	}
	return t, nil
}

// Hash returns the request ID: sha512-half of the prefixed wire form,
// signature included.
func Hash(t Transaction) ([32]byte, error) {
	data, err := Encode(t)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(prefixTxID, data), nil
}
