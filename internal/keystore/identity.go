// Package keystore holds the node's local signing identities.
package keystore

import (
	stded25519 "crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/crypto/algorithms/ed25519"
	"github.com/LeJamon/goPriceOracle/internal/crypto/algorithms/secp256k1"
)

// SeedSize is the length of generated seeds.
const SeedSize = 16

var ErrEmptySeed = errors.New("keystore: empty seed")

// Identity is a key pair able to sign submissions.
type Identity struct {
	keyType crypto.KeyType
	seed    []byte
	pub     []byte
	account crypto.AccountID

	secp *btcec.PrivateKey
	ed   stded25519.PrivateKey
}

// FromSeed derives an identity deterministically from seed.
func FromSeed(kt crypto.KeyType, seed []byte) (*Identity, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	id := &Identity{keyType: kt, seed: append([]byte(nil), seed...)}

	switch kt {
	case crypto.KeyTypeSecp256k1:
		priv, err := secp256k1.KeyFromSeed(seed)
		if err != nil {
			return nil, err
		}
		id.secp = priv
		id.pub = secp256k1.PublicKey(priv)
	case crypto.KeyTypeEd25519:
		id.ed = ed25519.KeyFromSeed(seed)
		id.pub = ed25519.PublicKey(id.ed)
	default:
		return nil, fmt.Errorf("keystore: unsupported key type %s", kt)
	}

	id.account = crypto.CalcAccountID(id.pub)
	return id, nil
}

// FromSeedHex is FromSeed with a hex-encoded seed.
func FromSeedHex(kt crypto.KeyType, seedHex string) (*Identity, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(seedHex))
	if err != nil {
		return nil, fmt.Errorf("keystore: decode seed: %w", err)
	}
	return FromSeed(kt, seed)
}

// Generate creates an identity from a fresh random seed.
func Generate(kt crypto.KeyType) (*Identity, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("keystore: read random seed: %w", err)
	}
	return FromSeed(kt, seed)
}

func (i *Identity) KeyType() crypto.KeyType { return i.keyType }

// PublicKey returns the 33-byte type-prefixed public key.
func (i *Identity) PublicKey() []byte { return append([]byte(nil), i.pub...) }

func (i *Identity) PublicKeyHex() string { return strings.ToUpper(hex.EncodeToString(i.pub)) }

func (i *Identity) AccountID() crypto.AccountID { return i.account }

func (i *Identity) Address() string { return i.account.Address() }

func (i *Identity) Seed() []byte { return append([]byte(nil), i.seed...) }

func (i *Identity) SeedHex() string { return strings.ToUpper(hex.EncodeToString(i.seed)) }

// Sign produces a signature that crypto.Verify accepts for PublicKey.
func (i *Identity) Sign(message []byte) ([]byte, error) {
	switch i.keyType {
	case crypto.KeyTypeSecp256k1:
		return secp256k1.Sign(i.secp, message), nil
	case crypto.KeyTypeEd25519:
		return ed25519.Sign(i.ed, message), nil
	default:
		return nil, fmt.Errorf("keystore: unsupported key type %s", i.keyType)
	}
}
