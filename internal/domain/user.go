package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns trips. PasswordHash is a bcrypt hash and is
// never serialised to API responses.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
