package token

import (
	"errors"
	"time"

	"authgate/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid is the single failure callers see from Decode. Malformed,
// mis-signed and expired tokens all collapse into it; logs can still tell
// expiry apart via errors.Is(err, jwt.ErrTokenExpired).
var ErrInvalid = errors.New("invalid token")

const clockSkewLeeway = 30 * time.Second

// Codec mints and verifies signed, time-bounded bearer tokens.
// The signing key and TTL are fixed at construction and never mutated,
// so a Codec is safe for concurrent use.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("AUTH_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}
	return &Codec{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
	}, nil
}

// TTL reports the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue mints a token for subject, valid from now until now+TTL.
func (c *Codec) Issue(now time.Time, subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies signature and expiry of raw at the given instant.
// Tampering with any payload byte invalidates the signature; an expired
// token is a normal outcome, not a parse error, but both return ErrInvalid.
func (c *Codec) Decode(raw string, now time.Time) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(clockSkewLeeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		// Preserve the library error in the chain for observability.
		return Claims{}, errors.Join(ErrInvalid, err)
	}

	if c.issuer != "" && claims.Issuer != c.issuer {
		return Claims{}, ErrInvalid
	}
	if claims.Login() == "" {
		return Claims{}, ErrInvalid
	}
	return claims, nil
}
