package utils

import (
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomToken(t *testing.T) {
	token, err := GenerateRandomToken(48)
	require.NoError(t, err)

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, decoded, 48)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	other, err := GenerateRandomToken(48)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateHexToken(t *testing.T) {
	token, err := GenerateHexToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	_, err = hex.DecodeString(token)
	assert.NoError(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", NormalizeEmail("  Jane.Doe@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
