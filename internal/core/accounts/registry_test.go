package accounts

import (
	"testing"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddress(t *testing.T) string {
	t.Helper()
	id, err := keystore.Generate(crypto.KeyTypeEd25519)
	require.NoError(t, err)
	return id.Address()
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	alice, bob := newAddress(t), newAddress(t)

	assert.False(t, r.IsAuthorized(alice))
	require.NoError(t, r.Add(alice))
	require.NoError(t, r.Add(alice))
	assert.True(t, r.IsAuthorized(alice))
	assert.False(t, r.IsAuthorized(bob))
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Add(bob))
	assert.Len(t, r.List(), 2)

	r.Remove(alice)
	assert.False(t, r.IsAuthorized(alice))
	assert.Equal(t, []string{bob}, r.List())
}

func TestRegistryRejectsInvalid(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Add("not-an-address"), crypto.ErrInvalidAddress)
	assert.False(t, r.IsAuthorized("not-an-address"))
	assert.False(t, r.IsAuthorized(""))
}
