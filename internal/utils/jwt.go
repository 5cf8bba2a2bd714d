// Package utils provides helpers for issuing tokens and hashing passwords.
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way an access token can fail verification.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed HS256 JWT and its UTC expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the raw long-lived token handed to the client.  Only its
// SHA-256 hash is stored.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// Identity is what an access token asserts about its bearer.
type Identity struct {
	UserID   uint64
	Role     string
	Timezone string // IANA zone name, may be empty
}

// NewAccessToken signs an HS256 JWT carrying sub, role, tz, exp and iat.  An
// empty tz is omitted.
func NewAccessToken(secret string, id Identity, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(id.UserID, 10),
		"role": id.Role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	if id.Timezone != "" {
		claims["tz"] = id.Timezone
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns its identity.
// Tokens signed with anything but HMAC are rejected.
func ParseAccessToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	var id Identity
	// Older tokens carried sub as a JSON number.
	switch v := claims["sub"].(type) {
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		id.UserID = n
	case float64:
		id.UserID = uint64(v)
	}
	if id.UserID == 0 {
		return Identity{}, ErrInvalidToken
	}
	id.Role, _ = claims["role"].(string)
	id.Timezone, _ = claims["tz"].(string)
	return id, nil
}

// NewRefreshToken returns 48 random bytes, hex encoded, valid for ttlDays.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the hex SHA-256 of a raw refresh token.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
