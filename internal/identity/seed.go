package identity

import (
	"context"
	"fmt"
	"log/slog"

	"authgate/internal/password"
)

// Seed populates an empty store with the default roles and two accounts:
// admin/admin123 (ADMIN) and user/user123 (USER). It is a no-op when any
// role already exists, so restarts do not duplicate data.
func Seed(ctx context.Context, store Store, log *slog.Logger) error {
	roles, err := store.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("seed: list roles: %w", err)
	}
	if len(roles) > 0 {
		log.Debug("store already seeded", "roles", len(roles))
		return nil
	}

	adminRole := &Role{Name: RoleAdmin}
	if err := store.CreateRole(ctx, adminRole); err != nil {
		return fmt.Errorf("seed: create role %s: %w", RoleAdmin, err)
	}
	userRole := &Role{Name: RoleUser}
	if err := store.CreateRole(ctx, userRole); err != nil {
		return fmt.Errorf("seed: create role %s: %w", RoleUser, err)
	}

	accounts := []struct {
		login  string
		secret string
		roleID int64
	}{
		{"admin", "admin123", adminRole.ID},
		{"user", "user123", userRole.ID},
	}
	for _, a := range accounts {
		hash, err := password.Hash(a.secret)
		if err != nil {
			return fmt.Errorf("seed: hash secret for %s: %w", a.login, err)
		}
		ident := &Identity{Login: a.login, SecretHash: hash, Active: true}
		if err := store.Create(ctx, ident, []int64{a.roleID}); err != nil {
			return fmt.Errorf("seed: create %s: %w", a.login, err)
		}
	}

	log.Info("seeded default roles and accounts")
	return nil
}
