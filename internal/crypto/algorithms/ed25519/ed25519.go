// Package ed25519 signs with Ed25519 keys whose public half carries a 0xED
// type prefix.
package ed25519

import (
	"crypto/ed25519"
	"errors"

	crypto "github.com/LeJamon/goPriceOracle/internal/crypto/common"
)

// Prefix marks an Ed25519 public key.
const Prefix byte = 0xED

var ErrInvalidPublicKey = errors.New("invalid ed25519 public key")

// KeyFromSeed derives a signing key from arbitrary seed material.
func KeyFromSeed(seed []byte) ed25519.PrivateKey {
	keyMaterial := crypto.Sha512Half(seed)
	return ed25519.NewKeyFromSeed(keyMaterial[:])
}

// PublicKey returns the 33-byte prefixed public key.
func PublicKey(priv ed25519.PrivateKey) []byte {
	pub := priv.Public().(ed25519.PublicKey)
	return append([]byte{Prefix}, pub...)
}

// Sign signs the message itself; Ed25519 hashes internally.
func Sign(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

// Verify checks sig against a prefixed public key.
func Verify(publicKey, message, sig []byte) (bool, error) {
	if len(publicKey) != 1+ed25519.PublicKeySize || publicKey[0] != Prefix {
		return false, ErrInvalidPublicKey
	}
	if len(sig) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey[1:]), message, sig), nil
}
