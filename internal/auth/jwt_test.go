package auth

import (
	"testing"
	"time"

	"supportly/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "supportly"}
	tok, err := GenerateAccessToken(cfg, 42, "c@example.com", "CREATOR")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "CREATOR", claims.Role)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "supportly"}

	other := &config.JWTConfig{AccessSecret: "other", AccessExpiry: time.Minute, Issuer: "supportly"}
	forged, _ := GenerateAccessToken(other, 1, "x@example.com", "ADMIN")
	_, err := ParseAccessToken(cfg, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: -time.Minute, Issuer: "supportly"}
	old, _ := GenerateAccessToken(expired, 1, "x@example.com", "CREATOR")
	_, err = ParseAccessToken(cfg, old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer := &config.JWTConfig{AccessSecret: "s3cret", AccessExpiry: time.Minute, Issuer: "elsewhere"}
	foreign, _ := GenerateAccessToken(wrongIssuer, 1, "x@example.com", "CREATOR")
	_, err = ParseAccessToken(cfg, foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken(cfg, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
