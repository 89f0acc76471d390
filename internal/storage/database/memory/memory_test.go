package memory

import (
	"context"
	"testing"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/LeJamon/goPriceOracle/internal/storage/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDB(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB { return NewDB() })
}

func TestMemoryClosed(t *testing.T) {
	db := NewDB()
	require.NoError(t, db.Close())
	_, err := db.Read(context.Background(), []byte("k"))
	assert.ErrorIs(t, err, database.ErrDBClosed)
	assert.ErrorIs(t, db.Write(context.Background(), []byte("k"), nil), database.ErrDBClosed)
}

func TestMemoryManagerReusesByName(t *testing.T) {
	m := NewManager()
	a, err := m.OpenDB("state")
	require.NoError(t, err)
	require.NoError(t, a.Write(context.Background(), []byte("k"), []byte("v")))

	b, err := m.OpenDB("state")
	require.NoError(t, err)
	v, err := b.Read(context.Background(), []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, m.CloseDB("state"))
	assert.Error(t, m.CloseDB("state"))
	require.NoError(t, m.Close())
}
