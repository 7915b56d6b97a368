package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository is the persistence contract for user records. All calls must
// honor the request context; the store is the only suspension point in the
// auth flows built on top of it.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)

	// SetRefreshToken overwrites the single refresh slot; empty clears it.
	SetRefreshToken(ctx context.Context, email, token string) error
	SetConfirmed(ctx context.Context, email string) error

	// SetPasswordHash replaces the stored hash and clears the refresh
	// slot: a password change ends the active session.
	SetPasswordHash(ctx context.Context, email, hash string) error
	SetRole(ctx context.Context, id, role string) (User, error)
	SetAvatar(ctx context.Context, email, url string) error
}
