package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPrefixes(t *testing.T) {
	assert.Equal(t, [4]byte{'T', 'X', 'N', 0}, HashPrefixTransactionID)
	assert.Equal(t, [4]byte{'S', 'T', 'X', 0}, HashPrefixTxSign)
	assert.NotEqual(t, HashPrefixTransactionID, HashPrefixTxSign)
}
