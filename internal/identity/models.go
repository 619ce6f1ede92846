package identity

import "time"

// Role names seeded by default. Keep these stable; they are part of the
// authorization contract declared on routes.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Identity is a login account. The secret hash never leaves the store
// layer except for verification; it must not be serialized.
// Identities are soft-deactivated via Active=false, never physically
// deleted while referenced by audit or ownership data.
type Identity struct {
	ID         int64
	Login      string
	SecretHash string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Role is static reference data, rarely mutated after seeding.
type Role struct {
	ID   int64
	Name string
}
