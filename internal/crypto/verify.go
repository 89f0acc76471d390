package crypto

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goPriceOracle/internal/crypto/algorithms/ed25519"
	"github.com/LeJamon/goPriceOracle/internal/crypto/algorithms/secp256k1"
)

var (
	// ErrUnknownKeyType is returned for public keys of an unrecognised format.
	ErrUnknownKeyType = errors.New("unknown public key type")
	// ErrBadSignature is returned when a signature does not verify.
	ErrBadSignature = errors.New("signature verification failed")
)

// Verify checks sig over message using the scheme implied by publicKey.
func Verify(publicKey, message, sig []byte) error {
	var (
		ok  bool
		err error
	)
	switch PublicKeyType(publicKey) {
	case KeyTypeEd25519:
		ok, err = ed25519.Verify(publicKey, message, sig)
	case KeyTypeSecp256k1:
		ok, err = secp256k1.Verify(publicKey, message, sig)
	default:
		return ErrUnknownKeyType
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	if !ok {
		return ErrBadSignature
	}
	return nil
}
