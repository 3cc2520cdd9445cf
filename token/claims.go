package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Type distinguishes access tokens from refresh tokens.
type Type string

const (
	TypeAccess  Type = "access"
	TypeRefresh Type = "refresh"
)

func (t Type) valid() bool {
	return t == TypeAccess || t == TypeRefresh
}

// Claims is the fixed payload of every token: sub, iat, exp and type.
// Unknown members in a payload are ignored, members of the wrong JSON type fail decoding.
type Claims struct {
	Type Type `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// complete reports whether every required claim is present.
func (c *Claims) complete() bool {
	return c.Subject != "" && c.IssuedAt != nil && c.ExpiresAt != nil && c.Type.valid()
}
