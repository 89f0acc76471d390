package secp256k1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv, err := KeyFromSeed([]byte("oracle seed"))
	require.NoError(t, err)
	pub := PublicKey(priv)
	require.Len(t, pub, 33)
	assert.Contains(t, []byte{0x02, 0x03}, pub[0])

	msg := []byte("set_prices 100.0 at 50")
	sig := Sign(priv, msg)

	ok, err := Verify(pub, msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(pub, []byte("set_prices 999.0 at 50"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignIsDeterministic(t *testing.T) {
	priv, err := KeyFromSeed([]byte("s"))
	require.NoError(t, err)
	// RFC 6979 nonces.
	assert.Equal(t, Sign(priv, []byte("m")), Sign(priv, []byte("m")))
}

func TestVerifyWrongKey(t *testing.T) {
	a, err := KeyFromSeed([]byte("a"))
	require.NoError(t, err)
	b, err := KeyFromSeed([]byte("b"))
	require.NoError(t, err)

	sig := Sign(a, []byte("m"))
	ok, err := Verify(PublicKey(b), []byte("m"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformed(t *testing.T) {
	_, err := Verify([]byte{0x05, 0x01}, []byte("m"), []byte{0x30})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	priv, err := KeyFromSeed([]byte("a"))
	require.NoError(t, err)
	ok, err := Verify(PublicKey(priv), []byte("m"), []byte{0x30, 0x00})
	require.NoError(t, err)
	assert.False(t, ok)
}
