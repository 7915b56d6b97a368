package auth

import "time"

// Verifier checks decoded tokens for expiry and scope. It is a pure
// function of (token, now, expected scope, secret): no side effects, no
// I/O, safe for concurrent use.
type Verifier struct {
	codec *Codec
}

func NewVerifier(codec *Codec) *Verifier {
	return &Verifier{codec: codec}
}

// Verify decodes token and enforces expiry, then scope, in that order.
//
// Outcomes:
//   - ErrInvalidToken: signature or structure failure, never conflated
//     with expiry.
//   - ErrExpired: expires_at has passed at now.
//   - ErrInvalidScope: the claims' scope does not equal expected. Passing
//     ScopeNone accepts only scope-less tokens, so an action token can
//     never double as an access or refresh credential.
func (v *Verifier) Verify(token string, expected Scope, now time.Time) (Claims, error) {
	claims, err := v.codec.Decode(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return Claims{}, ErrExpired
	}

	if claims.Scope != expected {
		return Claims{}, ErrInvalidScope
	}

	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
