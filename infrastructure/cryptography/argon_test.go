package cryptography

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgonRoundTrip(t *testing.T) {
	hash, err := CryptoHahser.HashString("correct horse", nil)
	require.NoError(t, err)
	assert.NotContains(t, string(hash), "correct horse")

	assert.True(t, CryptoHahser.VerifyHashData(string(hash), "correct horse"))
	assert.False(t, CryptoHahser.VerifyHashData(string(hash), "battery staple"))
	assert.False(t, CryptoHahser.VerifyHashData("not a hash", "correct horse"))
}
