// Package auth handles password hashing (bcrypt) and bearer tokens (HS256 JWT
// carrying the user id as subject).
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every verification failure: expired, malformed,
// wrongly signed or carrying an unusable subject.
var ErrInvalidToken = errors.New("invalid token")

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

const DefaultExpiryMinutes = 30

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

type Auth struct {
	secret    []byte
	expiry    time.Duration
	cost      int
	dummyHash []byte
}

func New(secret string, expiryMinutes int) *Auth {
	return newWithCost(secret, expiryMinutes, bcrypt.DefaultCost)
}

func newWithCost(secret string, expiryMinutes, cost int) *Auth {
	a := &Auth{
		secret: []byte(secret),
		expiry: time.Duration(expiryMinutes) * time.Minute,
		cost:   cost,
	}
	// Compared against on unknown usernames so a miss costs one bcrypt round
	// like a wrong password does.
	dummy, err := bcrypt.GenerateFromPassword([]byte("tradeguard-dummy-password"), cost)
	if err != nil {
		panic(fmt.Sprintf("auth: building dummy hash: %v", err))
	}
	a.dummyHash = dummy
	return a
}

func (a *Auth) HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (a *Auth) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnCompare performs a comparison whose result is discarded.
func (a *Auth) BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
}

func (a *Auth) GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken returns the user id bound to tokenStr or ErrInvalidToken.
func (a *Auth) ValidateToken(tokenStr string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
