package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/auth"
)

// User is the authenticated caller.
type User struct {
	ID       uuid.UUID
	Username string
}

// TokenVerifier validates bearer tokens. *auth.Tokens satisfies it.
type TokenVerifier interface {
	Verify(token string, want auth.TokenType) (auth.Claims, error)
}

type ctxKey int

const (
	userKey ctxKey = iota
	holderKey
)

type userHolder struct{ user *User }

func withUserHolder(ctx context.Context, h *userHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// WithUser returns ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	if h, ok := ctx.Value(holderKey).(*userHolder); ok {
		h.user = &u
	}
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the authenticated user stored by NewAuthenticator.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// NewAuthenticator rejects requests without a valid "Authorization: Bearer"
// access token with 401 and stores the caller in the request context.
func NewAuthenticator(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "authentication credentials were not provided")
				return
			}
			claims, err := v.Verify(token, auth.TokenAccess)
			if err != nil {
				unauthorized(w, "token is invalid or expired")
				return
			}
			id, err := claims.UserID()
			if err != nil {
				unauthorized(w, "token is invalid or expired")
				return
			}
			ctx := WithUser(r.Context(), User{ID: id, Username: claims.Username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"` + msg + `"}}`))
}
