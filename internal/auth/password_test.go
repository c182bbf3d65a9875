package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// tests use the minimum cost so they stay fast; production cost comes from config
func testHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := testHasher()

	digest, err := h.Hash("Str0ngP@ss")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngP@ss", digest)

	assert.True(t, h.Verify("Str0ngP@ss", digest))
	assert.False(t, h.Verify("wrongpass", digest))
}

func TestPasswordHasher_DistinctDigests(t *testing.T) {
	t.Parallel()

	h := testHasher()

	first, err := h.Hash("Str0ngP@ss")
	require.NoError(t, err)
	second, err := h.Hash("Str0ngP@ss")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("Str0ngP@ss", first))
	assert.True(t, h.Verify("Str0ngP@ss", second))
}

func TestPasswordHasher_MalformedDigest(t *testing.T) {
	t.Parallel()

	h := testHasher()

	assert.False(t, h.Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, h.Verify("anything", ""))
}

func TestNewPasswordHasher_CostOutOfRange(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(99)
	digest, err := h.Hash("Str0ngP@ss")
	require.NoError(t, err)
	assert.True(t, h.Verify("Str0ngP@ss", digest))
}
