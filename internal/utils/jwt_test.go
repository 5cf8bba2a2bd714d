package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", Identity{UserID: 42, Role: "PLAYER", Timezone: "Asia/Tokyo"}, 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	id, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Role: "PLAYER", Timezone: "Asia/Tokyo"}, id)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	tok, err := NewAccessToken("secret", Identity{UserID: 1, Role: "ADMIN"}, 15)
	require.NoError(t, err)
	_, err = ParseAccessToken("other", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewAccessToken("secret", Identity{UserID: 1, Role: "ADMIN"}, -1)
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", expired.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "PLAYER",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = ParseAccessToken("secret", noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_NumericSubject(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  7,
		"role": "PLAYER",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	id, err := ParseAccessToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id.UserID)
	assert.Empty(t, id.Timezone)
}

func TestRefreshToken(t *testing.T) {
	a, err := NewRefreshToken(7)
	require.NoError(t, err)
	b, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, a.Raw, 96)
	assert.NotEqual(t, a.Raw, b.Raw)
	assert.Len(t, HashRefreshRaw(a.Raw), 64)
	assert.Equal(t, HashRefreshRaw(a.Raw), HashRefreshRaw(a.Raw))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}
