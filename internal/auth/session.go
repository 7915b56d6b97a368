package auth

import (
	"context"
	"errors"
	"time"
)

// TokenPair is the credential pair returned by login and refresh. Email
// identifies the session's subject for callers (audit trails); it is not
// part of the wire shape.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Email        string `json:"-"`
}

// SessionManager orchestrates login, refresh and logout. It owns the
// single point of refresh-token persistence contact: the one refresh slot
// per identity.
//
// Concurrency: concurrent logins or refreshes for the same identity race
// on that slot with last-writer-wins semantics. A second login can
// invalidate the session a concurrent first call just issued. Accepted
// tradeoff; this is a single-active-session model, not a multi-device one.
type SessionManager struct {
	store    IdentityStore
	issuer   *Issuer
	verifier *Verifier
	hasher   PasswordHasher

	// decoyHash absorbs a hash comparison for unknown emails so that the
	// unknown-email and wrong-password paths cost roughly the same.
	decoyHash string

	clock func() time.Time
}

func NewSessionManager(store IdentityStore, issuer *Issuer, verifier *Verifier, hasher PasswordHasher) *SessionManager {
	decoy, _ := hasher.Hash("decoy.credential")
	return &SessionManager{
		store:     store,
		issuer:    issuer,
		verifier:  verifier,
		hasher:    hasher,
		decoyHash: decoy,
		clock:     time.Now,
	}
}

// Login verifies credentials and requires a confirmed email. On success it
// issues a fresh access+refresh pair and overwrites the stored refresh
// token, which implicitly invalidates any previously issued one.
//
// Unknown email and wrong password both return ErrInvalidCredentials; the
// caller must not be able to tell them apart.
func (m *SessionManager) Login(ctx context.Context, email, password string) (TokenPair, error) {
	id, err := m.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownIdentity) {
			m.hasher.Verify(password, m.decoyHash)
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}

	if !m.hasher.Verify(password, id.PasswordHash) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !id.Confirmed {
		return TokenPair{}, ErrEmailNotConfirmed
	}

	return m.issuePair(ctx, id.Email)
}

// Refresh exchanges a refresh token for a new pair. The presented token
// must verify with no scope, resolve to a known identity, and exactly
// match that identity's stored refresh token. The exact-match requirement
// is the revocation check: logout or a prior refresh invalidates all older
// refresh tokens immediately, so a stolen token cannot be replayed after
// its first use.
func (m *SessionManager) Refresh(ctx context.Context, token string) (TokenPair, error) {
	claims, err := m.verifier.Verify(token, ScopeNone, m.clock())
	if err != nil {
		return TokenPair{}, err
	}

	id, err := m.store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUnknownIdentity) {
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}

	if id.RefreshToken == "" || id.RefreshToken != token {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	return m.issuePair(ctx, id.Email)
}

// Logout clears the stored refresh token for the identity. Idempotent:
// logging out twice, or with no active session, succeeds.
func (m *SessionManager) Logout(ctx context.Context, email string) error {
	return m.store.SetRefreshToken(ctx, email, "")
}

func (m *SessionManager) issuePair(ctx context.Context, email string) (TokenPair, error) {
	access, err := m.issuer.AccessToken(email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.issuer.RefreshToken(email)
	if err != nil {
		return TokenPair{}, err
	}

	if err := m.store.SetRefreshToken(ctx, email, refresh); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, Email: email}, nil
}
