package authn

import (
	"context"
	"errors"
	"time"

	"authgate/internal/identity"
	"authgate/internal/password"
	"authgate/internal/token"
)

// ErrInvalidCredentials is the uniform login failure. Unknown login,
// deactivated identity and wrong secret all return it, so responses do
// not leak which logins exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service verifies login credentials and mints tokens. Read-only against
// the store; safe for concurrent use.
type Service struct {
	store identity.Store
	codec *token.Codec
}

func NewService(store identity.Store, codec *token.Codec) *Service {
	return &Service{store: store, codec: codec}
}

// Authenticate checks login+secret and returns a signed token on success.
// Store infrastructure errors propagate as themselves; they are not
// credential failures.
func (s *Service) Authenticate(ctx context.Context, login, secret string) (string, error) {
	ident, err := s.store.FindByLogin(ctx, login)
	if errors.Is(err, identity.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !ident.Active {
		return "", ErrInvalidCredentials
	}
	if !password.Verify(secret, ident.SecretHash) {
		return "", ErrInvalidCredentials
	}
	return s.codec.Issue(time.Now().UTC(), ident.Login)
}
