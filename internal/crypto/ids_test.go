package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcAccountIDIsStable(t *testing.T) {
	pub, _ := hex.DecodeString("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	a := CalcAccountID(pub)
	b := CalcAccountID(pub)
	assert.Equal(t, a, b)
	assert.False(t, a.IsZero())

	other, _ := hex.DecodeString("ED9434799226374926EDA3B54B1B461B4ABF7237962EAE18528FEA67595397FA32")
	assert.NotEqual(t, a, CalcAccountID(other))
}

func TestAddressRoundTrip(t *testing.T) {
	pub, _ := hex.DecodeString("ED9434799226374926EDA3B54B1B461B4ABF7237962EAE18528FEA67595397FA32")
	id := CalcAccountID(pub)
	addr := AddressFromPublicKey(pub)
	assert.Equal(t, id.Address(), addr)

	parsed, err := ParseAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.True(t, IsValidAddress(addr))
}

func TestZeroAccountAddress(t *testing.T) {
	// Version byte 0x00 plus a zero body encodes with leading '1's.
	addr := AccountID{}.Address()
	assert.Equal(t, "1111111111111111111114oLvT2", addr)
	id, err := ParseAddress(addr)
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestParseAddressRejects(t *testing.T) {
	pub, _ := hex.DecodeString("0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020")
	addr := AddressFromPublicKey(pub)

	raw, err := base58.Decode(addr)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF
	_, err = ParseAddress(base58.Encode(raw))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress("0OIl")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseAddress(base58.Encode([]byte{0, 1, 2}))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	raw[0] = 0x05
	_, err = ParseAddress(base58.Encode(raw))
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
