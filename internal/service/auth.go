package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bridgitkanini/haultrackrbackend/internal/auth"
	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// TokenIssuer issues and refreshes JWT pairs. *auth.Tokens satisfies it.
type TokenIssuer interface {
	Pair(u domain.User) (auth.TokenPair, error)
	Refresh(refresh string) (string, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password.
// Returns domain.ErrConflict if the username is taken.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return domain.User{}, fmt.Errorf("%w: email is invalid", domain.ErrValidation)
		}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.Create(ctx, domain.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AuthService.Register: %w", err)
	}
	return u, nil
}

// Login returns a token pair for valid credentials. An unknown username and
// a wrong password both return auth.ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return auth.TokenPair{}, auth.ErrBadCredentials
	}
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return auth.TokenPair{}, auth.ErrBadCredentials
	}
	pair, err := s.tokens.Pair(u)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	return pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(_ context.Context, refresh string) (string, error) {
	access, err := s.tokens.Refresh(refresh)
	if err != nil {
		return "", fmt.Errorf("service.AuthService.Refresh: %w", err)
	}
	return access, nil
}
