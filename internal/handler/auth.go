package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the public form of an account. The password hash never leaves the service layer.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenRequest is the body of POST /api/token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/token/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// AccessResponse carries a freshly minted access token.
type AccessResponse struct {
	Access string `json:"access"`
}

// Register handles POST /api/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.auth.Register(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt})
}

// ObtainToken handles POST /api/token and returns an access/refresh pair.
func (s *Server) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var body TokenRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	pair, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// RefreshToken handles POST /api/token/refresh.
func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var body RefreshRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Refresh == "" {
		requestError(w, http.StatusUnprocessableEntity, "validation_error", "refresh is required")
		return
	}
	access, err := s.auth.Refresh(r.Context(), body.Refresh)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, AccessResponse{Access: access})
}
