// Package auth turns bearer tokens into authenticated actors. Tokens are HS256 JWTs
// whose subject is the actor id and whose role claim is customer, worker or admin.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier. The secret must not be empty.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses token and returns the actor it authenticates.
func (v *Verifier) Verify(token string) (kernel.Actor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return kernel.Actor{}, ErrMissingToken
	}

	tok, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return kernel.Actor{}, ErrInvalidToken
	}

	id, err := kernel.UUIDFromString(c.Subject)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: subject: %w", ErrInvalidToken, err)
	}
	role, err := kernel.ParseRole(c.Role)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("%w: role: %w", ErrInvalidToken, err)
	}

	return kernel.Actor{ID: id, Role: role}, nil
}

// Issue signs a token for actor that expires after ttl. The dispatch engine itself
// never logs anyone in; Issue exists for tooling and tests.
func (v *Verifier) Issue(actor kernel.Actor, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
