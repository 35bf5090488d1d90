package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := h.Compare("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewHasherDefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
}

func TestCompareMalformedHash(t *testing.T) {
	ok, err := NewHasher(bcrypt.MinCost).Compare("pw", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCrypto)
}

func TestHashUsesFirst72Bytes(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 72) + "tail"

	hash, err := h.Hash(long)
	require.NoError(t, err)

	ok, err := h.Compare(long, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(strings.Repeat("p", 72), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(strings.Repeat("p", 71), hash)
	require.NoError(t, err)
	assert.False(t, ok)
}
