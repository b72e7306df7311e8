package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "ops@example.com", "admin", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	c, err := ParseToken(testSecret, tok.Token, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.UserID)
	assert.Equal(t, "ops@example.com", c.Email)
	assert.Equal(t, "admin", c.Role)
	assert.Equal(t, TokenTypeAccess, c.Type)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := NewRefreshToken(testSecret, 7, 7)
	require.NoError(t, err)

	c, err := ParseToken(testSecret, tok.Token, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), c.UserID)
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Role)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken(testSecret, 9, "shopper@example.com", 7)
	require.NoError(t, err)

	c, err := ParseToken(testSecret, tok.Token, TokenTypeSession)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), c.UserID)
	assert.Equal(t, "shopper@example.com", c.Email)
}

func TestParseTokenRejectsWrongType(t *testing.T) {
	refresh, err := NewRefreshToken(testSecret, 1, 7)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, refresh.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, err := NewSessionToken(testSecret, 1, "a@b.c", 7)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, session.Token, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "a@b.c", "admin", 15)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", tok.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 1, "a@b.c", "admin", -1)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok.Token, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.jwt", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashTokenIsStableAndOpaque(t *testing.T) {
	h1 := HashToken("some-token")
	h2 := HashToken("some-token")
	h3 := HashToken("other-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // hex sha256
	assert.NotContains(t, h1, "some-token")
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(32)
	require.NoError(t, err)
	b, err := RandomHex(32)
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
