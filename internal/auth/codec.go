package auth

import (
	"errors"
	"fmt"

	"contacts-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Codec encodes and decodes Claims to and from compact JWT strings signed
// with a symmetric secret. Pure and stateless; safe for concurrent use.
//
// Expiry is intentionally NOT checked here. Decode answers "is this token
// ours and intact"; whether it is still alive is the verifier's concern.
type Codec struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewCodec validates the signing configuration. A missing secret or an
// algorithm other than HS256/HS512 is a configuration error and must be
// fatal at startup.
func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("SECRET_KEY is required")
	}

	var method *jwt.SigningMethodHMAC
	switch cfg.Algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q (want HS256 or HS512)", cfg.Algorithm)
	}

	return &Codec{
		secret: []byte(cfg.SecretKey),
		method: method,
	}, nil
}

// Encode signs claims into a compact token string. It never fails for
// well-formed claims.
func (c *Codec) Encode(claims Claims) (string, error) {
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and structural well-formedness of token.
// It fails with ErrMalformed if the token cannot be parsed into the
// three-part structure, and ErrInvalidSignature if any byte of the signed
// content was altered. The two are never conflated.
func (c *Codec) Decode(token string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		// Claims validation (exp, iat) happens in the verifier against a
		// caller-supplied clock.
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	return claims, nil
}
