package auth

import "github.com/golang-jwt/jwt/v5"

// Scope restricts a token to one declared purpose so it cannot be replayed
// against a different endpoint. Access and refresh tokens carry no scope;
// they are distinguished by lifetime and by which storage slot accepts them.
type Scope string

const (
	// ScopeNone marks access/refresh tokens. Absence of a scope claim is
	// the only accepted form for those tokens.
	ScopeNone Scope = ""

	ScopeEmailVerify   Scope = "email_verify"
	ScopeResetPassword Scope = "reset_password"
)

// Claims is the only claims shape this service signs.
// Subject is always the user's email. Invariant: ExpiresAt > IssuedAt.
type Claims struct {
	jwt.RegisteredClaims

	Scope Scope `json:"scope,omitempty"`
}
