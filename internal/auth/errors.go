package auth

import "errors"

// Failure taxonomy for the token and session subsystem. Every outcome is a
// typed, recoverable-by-caller error; the HTTP layer maps each one to a
// status. None of these are retried internally.
var (
	// ErrMalformed is returned by the codec when a token cannot be parsed
	// into the three-part compact JWT structure.
	ErrMalformed = errors.New("token malformed")

	// ErrInvalidSignature is returned by the codec when the token parses
	// but its signature does not match the configured secret.
	ErrInvalidSignature = errors.New("token signature invalid")

	// ErrInvalidToken covers both malformed and bad-signature tokens at
	// the verifier boundary.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpired means the token verified structurally but its expiry has
	// passed. Reported distinctly from ErrInvalidToken so callers can say
	// "please log in again" rather than "malformed token".
	ErrExpired = errors.New("token expired")

	// ErrInvalidScope means the token was presented to an endpoint that
	// expects a different token purpose.
	ErrInvalidScope = errors.New("invalid token scope")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed rejects login before the email-verify flow
	// completed.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrInvalidRefreshToken is the revocation outcome: the presented
	// refresh token does not exactly match the stored one. Deliberately
	// non-descriptive; it must not reveal which check failed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUnknownIdentity is returned by identity stores when no record
	// exists for the given email.
	ErrUnknownIdentity = errors.New("unknown identity")
)
