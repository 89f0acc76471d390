// Package dbtest holds the behaviour every database.DB backend must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/LeJamon/goPriceOracle/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend. open must return a fresh, empty database.
func Run(t *testing.T, open func(t *testing.T) database.DB) {
	t.Run("ReadMissing", func(t *testing.T) {
		db := open(t)
		_, err := db.Read(context.Background(), []byte("missing"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("WriteReadDelete", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		require.NoError(t, db.Write(ctx, []byte("k"), []byte("v2")))
		got, err = db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)

		require.NoError(t, db.Delete(ctx, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("ReadReturnsCopy", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("k"), []byte("abc")))

		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		got[0] = 'x'

		again, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})

	t.Run("Batch", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)
		require.NoError(t, db.Write(ctx, []byte("gone"), []byte("x")))

		err := db.Batch(ctx, []database.BatchOperation{
			database.Put([]byte("a"), []byte("1")),
			database.Put([]byte("b"), []byte("2")),
			database.Del([]byte("gone")),
		})
		require.NoError(t, err)

		a, err := db.Read(ctx, []byte("a"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), a)
		b, err := db.Read(ctx, []byte("b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), b)
		_, err = db.Read(ctx, []byte("gone"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("BatchRejectsUnknownOp", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)
		err := db.Batch(ctx, []database.BatchOperation{
			database.Put([]byte("a"), []byte("1")),
			{Type: database.BatchOpType(99), Key: []byte("b")},
		})
		require.Error(t, err)
		_, err = db.Read(ctx, []byte("a"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("IteratorRange", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)
		for _, k := range []string{"a/1", "a/2", "a/3", "b/1"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte("v-"+k)))
		}

		it, err := db.Iterator(ctx, []byte("a/"), []byte("a/3"))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, "v-"+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"a/1", "a/2"}, keys)
	})

	t.Run("IteratorOpenBounds", func(t *testing.T) {
		ctx := context.Background()
		db := open(t)
		for _, k := range []string{"c", "a", "b"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
		}

		it, err := db.Iterator(ctx, nil, nil)
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.Equal(t, []string{"a", "b", "c"}, keys)
	})
}
