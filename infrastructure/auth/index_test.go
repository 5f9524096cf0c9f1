package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuer() *TokenIssuer {
	return &TokenIssuer{SigningKey: []byte("test-signing-key"), Issuer: "rollcall.io", TTL: time.Hour}
}

func TestTokenRoundTrip(t *testing.T) {
	ti := issuer()
	token, err := ti.GenerateAuthToken(ClaimsData{OperatorID: "op1", Email: "a@b.c", Role: "admin"})
	require.NoError(t, err)

	claims, err := ti.DecodeAuthToken(*token)
	require.NoError(t, err)
	assert.Equal(t, "op1", claims.OperatorID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "op1", claims.Subject)
}

func TestExpiredToken(t *testing.T) {
	ti := issuer()
	ti.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := ti.GenerateAuthToken(ClaimsData{OperatorID: "op1"})
	require.NoError(t, err)

	ti.Now = nil
	_, err = ti.DecodeAuthToken(*token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestWrongKeyOrIssuer(t *testing.T) {
	token, err := issuer().GenerateAuthToken(ClaimsData{OperatorID: "op1"})
	require.NoError(t, err)

	other := issuer()
	other.SigningKey = []byte("another-key")
	_, err = other.DecodeAuthToken(*token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other = issuer()
	other.Issuer = "someone-else"
	_, err = other.DecodeAuthToken(*token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestMissingSigningKey(t *testing.T) {
	_, err := (&TokenIssuer{}).GenerateAuthToken(ClaimsData{})
	assert.Error(t, err)
}
