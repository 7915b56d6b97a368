package contact

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("contact email already exists")
)

// Repository is the persistence contract for contacts. Every method takes
// the owning userID; implementations must scope all access to it.
type Repository interface {
	Create(ctx context.Context, c Contact) (Contact, error)
	Get(ctx context.Context, userID, id string) (Contact, error)
	List(ctx context.Context, userID string, offset, limit int) ([]Contact, error)
	Update(ctx context.Context, userID, id string, upd Update) (Contact, error)
	Delete(ctx context.Context, userID, id string) error

	// Search matches first name, last name or email by case-insensitive
	// substring.
	Search(ctx context.Context, userID, q string) ([]Contact, error)

	// UpcomingBirthdays returns contacts whose birthday (month and day)
	// falls within [from, from+days], wrapping across the new year.
	UpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]Contact, error)
}
