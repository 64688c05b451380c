package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // argon2id, empty for OAuth-only users
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the acting identity for a request, resolved from the session
// or token by the auth middleware. It is never persisted.
type Principal struct {
	ID       uuid.UUID
	Username string
	Admin    bool
}

// UserFields carries the writable attributes of a user record. Pointer
// fields distinguish "not provided" from a zero value so updates can be
// partial. The admin flag is deliberately absent: it is only reachable
// through the toggle operation.
type UserFields struct {
	Username             *string
	Email                *string
	Password             *string
	PasswordConfirmation *string
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}
