package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth(expiryMinutes int) *Auth {
	return newWithCost("test-secret", expiryMinutes, bcrypt.MinCost)
}

func TestPasswordHashing(t *testing.T) {
	a := newTestAuth(DefaultExpiryMinutes)

	hash, err := a.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, a.CheckPassword(hash, "correct horse"))
	assert.False(t, a.CheckPassword(hash, "wrong"))
	assert.False(t, a.CheckPassword("not-a-hash", "correct horse"))

	a.BurnCompare("anything")
}

func TestHashPasswordByteLimit(t *testing.T) {
	a := newTestAuth(DefaultExpiryMinutes)

	_, err := a.HashPassword(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = a.HashPassword(strings.Repeat("é", 40))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewPanicsOnUnusableCost(t *testing.T) {
	assert.Panics(t, func() { newWithCost("s", DefaultExpiryMinutes, bcrypt.MaxCost+1) })
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestAuth(DefaultExpiryMinutes)

	tok, err := a.GenerateToken(42)
	require.NoError(t, err)

	id, err := a.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidateTokenRejectsUniformly(t *testing.T) {
	a := newTestAuth(DefaultExpiryMinutes)
	expired, err := newTestAuth(-1).GenerateToken(1)
	require.NoError(t, err)
	otherSecret, err := newWithCost("other", 30, bcrypt.MinCost).GenerateToken(1)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := map[string]string{
		"expired":       expired,
		"wrong secret":  otherSecret,
		"none alg":      noneAlg,
		"no expiry":     noExpiry,
		"bad subject":   badSubject,
		"malformed":     "not.a.jwt",
		"empty":         "",
		"truncated sig": expired[:strings.LastIndex(expired, ".")],
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.ValidateToken(tok)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/auth/me", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), tt.header)
	}
}
