package tx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
)

// Signature verification errors
var (
	ErrMissingSignature  = errors.New("transaction is not signed")
	ErrMissingPublicKey  = errors.New("signing public key is missing")
	ErrInvalidSignature  = errors.New("signature is invalid")
	ErrPublicKeyMismatch = errors.New("public key does not match account")
)

// Signer is a key able to sign requests.
type Signer interface {
	PublicKey() []byte
	Address() string
	Sign(message []byte) ([]byte, error)
}

// SigningPayload returns the bytes covered by the signature: the prefixed
// wire form with TxnSignature cleared.
func SigningPayload(t Transaction) ([]byte, error) {
	common := t.GetCommon()
	sig := common.TxnSignature
	common.TxnSignature = ""
	data, err := Encode(t)
	common.TxnSignature = sig
	if err != nil {
		return nil, err
	}
	return append(append([]byte(nil), prefixSign...), data...), nil
}

// Sign sets Account and SigningPubKey from s and signs t in place.
func Sign(t Transaction, s Signer) error {
	common := t.GetCommon()
	common.Account = s.Address()
	common.SigningPubKey = strings.ToUpper(hex.EncodeToString(s.PublicKey()))

	payload, err := SigningPayload(t)
	if err != nil {
		return err
	}
	sig, err := s.Sign(payload)
	if err != nil {
		return fmt.Errorf("sign %s: %w", t.TxType(), err)
	}
	common.TxnSignature = strings.ToUpper(hex.EncodeToString(sig))
	return nil
}

// VerifySignature checks that t is signed by the key of its Account.
func VerifySignature(t Transaction) error {
	common := t.GetCommon()
	if common.SigningPubKey == "" {
		return ErrMissingPublicKey
	}
	if common.TxnSignature == "" {
		return ErrMissingSignature
	}

	pub, err := hex.DecodeString(common.SigningPubKey)
	if err != nil || !crypto.IsValidPublicKey(pub) {
		return fmt.Errorf("%w: SigningPubKey", ErrInvalidSignature)
	}
	if crypto.AddressFromPublicKey(pub) != common.Account {
		return ErrPublicKeyMismatch
	}
	sig, err := hex.DecodeString(common.TxnSignature)
	if err != nil {
		return fmt.Errorf("%w: TxnSignature", ErrInvalidSignature)
	}

	payload, err := SigningPayload(t)
	if err != nil {
		return err
	}
	if err := crypto.Verify(pub, payload, sig); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
