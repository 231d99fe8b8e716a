// Package auth issues and verifies the API's JWT bearer tokens and hashes
// user passwords.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the JWT payload.
type Claims struct {
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID.
func (c Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenPair is returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens creates a Tokens for secret.
func NewTokens(secret string, accessTTL, refreshTTL time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// Pair issues an access and a refresh token for u.
func (t *Tokens) Pair(u domain.User) (TokenPair, error) {
	access, err := t.sign(u.ID, u.Username, TokenAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(u.ID, u.Username, TokenRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (t *Tokens) Refresh(refresh string) (string, error) {
	c, err := t.Verify(refresh, TokenRefresh)
	if err != nil {
		return "", err
	}
	id, err := c.UserID()
	if err != nil {
		return "", fmt.Errorf("auth.Tokens.Refresh: %w: bad subject", domain.ErrUnauthorized)
	}
	return t.sign(id, c.Username, TokenAccess, t.accessTTL)
}

// Verify parses token and checks its signature, expiry and type.
// Every failure wraps domain.ErrUnauthorized.
func (t *Tokens) Verify(token string, want TokenType) (Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("auth.Tokens.Verify: %w: %w", domain.ErrUnauthorized, err)
	}
	if c.TokenType != want {
		return Claims{}, fmt.Errorf("auth.Tokens.Verify: %w: expected %s token", domain.ErrUnauthorized, want)
	}
	if _, err := c.UserID(); err != nil {
		return Claims{}, fmt.Errorf("auth.Tokens.Verify: %w: bad subject", domain.ErrUnauthorized)
	}
	return c, nil
}

func (t *Tokens) sign(userID uuid.UUID, username string, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()
	c := Claims{
		Username:  username,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Tokens.sign: %w", err)
	}
	return s, nil
}

// ErrBadCredentials is returned when a username/password pair does not match.
var ErrBadCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthorized)
