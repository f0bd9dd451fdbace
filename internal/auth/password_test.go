package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"strot/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.False(t, IsLegacyHash(hash))

	assert.NoError(t, VerifyPassword("correct horse battery", hash))
	assert.ErrorIs(t, VerifyPassword("wrong", hash), types.ErrInvalidCredentials)
}

func TestVerifyLegacySHA256(t *testing.T) {
	sum := sha256.Sum256([]byte("hunter2"))
	legacy := hex.EncodeToString(sum[:])
	require.True(t, IsLegacyHash(legacy))

	assert.NoError(t, VerifyPassword("hunter2", legacy))
	assert.ErrorIs(t, VerifyPassword("hunter3", legacy), types.ErrInvalidCredentials)
}

func TestVerifyPasswordGarbageHash(t *testing.T) {
	assert.Error(t, VerifyPassword("anything", "not-a-bcrypt-hash"))
}
