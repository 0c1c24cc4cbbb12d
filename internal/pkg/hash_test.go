package pkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, VerifyPassword("hunter2", hash))
	assert.False(t, VerifyPassword("wrong", hash))
	assert.False(t, VerifyPassword("", hash))
	assert.False(t, VerifyPassword("hunter2", ""))
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	a, err := HashPassword("hunter2")
	require.NoError(t, err)
	b, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+$`), token)

	other, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateSecureTokenInvalidLength(t *testing.T) {
	_, err := GenerateSecureToken(0)
	assert.Error(t, err)

	_, err = GenerateSecureToken(-1)
	assert.Error(t, err)
}
