package identity

import (
	"context"
	"errors"
)

var (
	// ErrNotFound covers both "no such identity" and "no such role" lookups.
	ErrNotFound = errors.New("identity: not found")

	// ErrDuplicateLogin signals a unique-login violation on create/update.
	ErrDuplicateLogin = errors.New("identity: login already exists")

	// ErrDuplicateRole signals a unique-role-name violation.
	ErrDuplicateRole = errors.New("identity: role already exists")
)

// Store is the credential and role store consumed by the authentication
// core. Implementations must be safe for concurrent use and honor
// context cancellation on every lookup.
type Store interface {
	// FindByLogin returns the identity for login, active or not.
	FindByLogin(ctx context.Context, login string) (*Identity, error)
	FindByID(ctx context.Context, id int64) (*Identity, error)
	List(ctx context.Context) ([]*Identity, error)

	// Create persists a new identity with its role set in one atomic
	// operation and fills in its ID. An unknown role ID returns
	// ErrNotFound and leaves nothing behind, so a failed create can be
	// retried with the same login.
	Create(ctx context.Context, ident *Identity, roleIDs []int64) error
	// Update persists login, secret hash and active flag by ID.
	Update(ctx context.Context, ident *Identity) error
	// Deactivate soft-deletes: the identity stays resolvable by admins
	// but no longer authenticates.
	Deactivate(ctx context.Context, id int64) error

	// RolesByLogin resolves the current role names of an ACTIVE identity.
	// Missing or deactivated identities return ErrNotFound, so a stale
	// token can never resurrect prior privileges.
	RolesByLogin(ctx context.Context, login string) ([]string, error)

	ListRoles(ctx context.Context) ([]*Role, error)
	CreateRole(ctx context.Context, role *Role) error

	// ReplaceRoles rewrites the identity's role set atomically
	// (clear join rows, then add). Unknown role IDs return ErrNotFound.
	ReplaceRoles(ctx context.Context, identityID int64, roleIDs []int64) error
}
