// Package secp256k1 signs the sha512-half digest of a message with a
// secp256k1 key and DER-encodes the signature.
package secp256k1

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	crypto "github.com/LeJamon/goPriceOracle/internal/crypto/common"
)

var (
	ErrInvalidPrivateKey = errors.New("invalid secp256k1 private key")
	ErrInvalidPublicKey  = errors.New("invalid secp256k1 public key")
)

// KeyFromSeed derives a private key from seed material. The scalar is the
// sha512-half of the seed; a zero scalar is rejected.
func KeyFromSeed(seed []byte) (*btcec.PrivateKey, error) {
	material := crypto.Sha512Half(seed)
	priv, _ := btcec.PrivKeyFromBytes(material[:])
	if priv.Key.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return priv, nil
}

// PublicKey returns the 33-byte compressed public key.
func PublicKey(priv *btcec.PrivateKey) []byte {
	return priv.PubKey().SerializeCompressed()
}

// Sign returns a canonical (low-S) DER signature over sha512half(message).
func Sign(priv *btcec.PrivateKey, message []byte) []byte {
	digest := crypto.Sha512Half(message)
	return btcecdsa.Sign(priv, digest[:]).Serialize()
}

// Verify checks a DER signature over sha512half(message).
func Verify(publicKey, message, sig []byte) (bool, error) {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false, ErrInvalidPublicKey
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false, nil
	}
	digest := crypto.Sha512Half(message)
	return parsed.Verify(digest[:], pub), nil
}
