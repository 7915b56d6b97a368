package auth

import "context"

// Identity is the authenticated principal this subsystem operates over.
// Email is unique and is the subject of every token issued for the user.
//
// RefreshToken holds the single outstanding refresh token; issuing a new
// one invalidates the prior one. This slot is the sole session-revocation
// mechanism.
type Identity struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Confirmed    bool
	RefreshToken string
	Avatar       string
}

// IdentityStore is the persistence contract the session manager depends
// on. Implementations live outside this package; storage/network calls
// must honor the request context.
type IdentityStore interface {
	// FindByEmail returns ErrUnknownIdentity when no record exists.
	FindByEmail(ctx context.Context, email string) (Identity, error)

	// SetRefreshToken overwrites the identity's refresh slot. An empty
	// token clears it.
	SetRefreshToken(ctx context.Context, email, token string) error
}
