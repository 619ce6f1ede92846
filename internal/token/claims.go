package token

import "github.com/golang-jwt/jwt/v5"

// Claims is the only supported token claims shape for this service.
// The token carries identity only; roles are resolved from the store on every
// request so that role edits and deactivation take effect before expiry.
type Claims struct {
	jwt.RegisteredClaims
}

// Login returns the subject the token was minted for.
func (c Claims) Login() string { return c.RegisteredClaims.Subject }
