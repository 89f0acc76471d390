package ed25519

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := KeyFromSeed([]byte("oracle seed"))
	pub := PublicKey(priv)
	require.Len(t, pub, 33)
	assert.Equal(t, Prefix, pub[0])

	msg := []byte("set_prices 100.0 at 50")
	sig := Sign(priv, msg)

	ok, err := Verify(pub, msg, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(pub, []byte("set_prices 999.0 at 50"), sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeyFromSeedIsDeterministic(t *testing.T) {
	a := PublicKey(KeyFromSeed([]byte("s")))
	b := PublicKey(KeyFromSeed([]byte("s")))
	c := PublicKey(KeyFromSeed([]byte("t")))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestVerifyRejectsMalformedKey(t *testing.T) {
	_, err := Verify([]byte{0x02, 0x01}, []byte("m"), make([]byte, 64))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	ok, err := Verify(PublicKey(KeyFromSeed([]byte("s"))), []byte("m"), []byte{1, 2, 3})
	require.NoError(t, err)
	assert.False(t, ok)
}
