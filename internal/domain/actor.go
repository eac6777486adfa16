package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Actor is an authenticated user of the ledger. Every mutating call carries
// an actor id; entries, consumptions, transfers and audit events all record
// who performed them.
type Actor struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewActor validates and builds an actor.
func NewActor(name, email, passwordHash, role string, now time.Time) (*Actor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", "is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if passwordHash == "" {
		return nil, NewValidationError("password", "is required")
	}
	if role == "" {
		role = "bookkeeper"
	}
	return &Actor{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}
