package auth

import (
	"time"

	"contacts-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Action-token lifetimes are fixed by design: these tokens gate single-use
// flows and are not meant to be tuned per deployment.
const (
	emailVerifyTTL   = 24 * time.Hour
	resetPasswordTTL = time.Hour
)

// Issuer builds the claim set for each token purpose and signs it through
// the codec. Access and refresh tokens are scope-less; scope tagging is
// reserved for single-use action tokens, where presenting the wrong token
// type to the wrong endpoint must be detectable from the token alone.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewIssuer(codec *Codec, cfg config.AuthConfig) *Issuer {
	return &Issuer{
		codec:      codec,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clock:      time.Now,
	}
}

// AccessToken issues a short-lived credential for regular API calls.
func (i *Issuer) AccessToken(email string) (string, error) {
	return i.issue(email, ScopeNone, i.accessTTL)
}

// RefreshToken issues the longer-lived credential exchanged for a new pair.
func (i *Issuer) RefreshToken(email string) (string, error) {
	return i.issue(email, ScopeNone, i.refreshTTL)
}

// EmailVerifyToken issues the single-purpose token embedded in the
// confirmation link sent at signup.
func (i *Issuer) EmailVerifyToken(email string) (string, error) {
	return i.issue(email, ScopeEmailVerify, emailVerifyTTL)
}

// ResetPasswordToken issues the single-purpose token embedded in the
// password-reset link.
func (i *Issuer) ResetPasswordToken(email string) (string, error) {
	return i.issue(email, ScopeResetPassword, resetPasswordTTL)
}

func (i *Issuer) issue(email string, scope Scope, ttl time.Duration) (string, error) {
	now := i.clock().UTC().Truncate(time.Second)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Scope: scope,
	}

	return i.codec.Encode(claims)
}
