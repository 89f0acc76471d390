package crypto

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/crypto/ripemd160"
	"github.com/mr-tron/base58"
)

// AccountIDSize is the size of an account ID in bytes.
const AccountIDSize = 20

// addressVersion prefixes every encoded address.
const addressVersion byte = 0x00

// ErrInvalidAddress is returned by ParseAddress.
var ErrInvalidAddress = errors.New("invalid address")

// AccountID identifies a signer independently of its key type.
type AccountID [AccountIDSize]byte

// CalcAccountID computes RIPEMD160(SHA256(publicKey)). The whole public key,
// type prefix included, is hashed.
func CalcAccountID(publicKey []byte) AccountID {
	sha256Hash := sha256.Sum256(publicKey)

	hasher := ripemd160.New()
	hasher.Write(sha256Hash[:])

	var result AccountID
	copy(result[:], hasher.Sum(nil))
	return result
}

// IsZero reports whether id is all zeros.
func (id AccountID) IsZero() bool {
	return id == AccountID{}
}

// Address encodes the account ID as base58(version || id || checksum).
func (id AccountID) Address() string {
	payload := make([]byte, 0, 1+AccountIDSize+4)
	payload = append(payload, addressVersion)
	payload = append(payload, id[:]...)
	sum := checksum(payload)
	return base58.Encode(append(payload, sum[:]...))
}

func (id AccountID) String() string {
	return id.Address()
}

// AddressFromPublicKey derives the address a public key signs as.
func AddressFromPublicKey(publicKey []byte) string {
	return CalcAccountID(publicKey).Address()
}

// ParseAddress decodes and checksums an address.
func ParseAddress(addr string) (AccountID, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return AccountID{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != 1+AccountIDSize+4 {
		return AccountID{}, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(raw))
	}
	if raw[0] != addressVersion {
		return AccountID{}, fmt.Errorf("%w: version 0x%02x", ErrInvalidAddress, raw[0])
	}
	body, sum := raw[:1+AccountIDSize], raw[1+AccountIDSize:]
	want := checksum(body)
	if !bytes.Equal(sum, want[:]) {
		return AccountID{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}

	var id AccountID
	copy(id[:], body[1:])
	return id, nil
}

// IsValidAddress reports whether addr parses.
func IsValidAddress(addr string) bool {
	_, err := ParseAddress(addr)
	return err == nil
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}
