package identity

import (
	"context"
	"fmt"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a mutex-guarded in-memory Store useful for tests and
// local runs. It is not intended for production use.
type MemoryStore struct {
	mu         sync.Mutex
	nextUserID int64
	nextRoleID int64
	users      map[int64]*Identity
	roles      map[int64]*Role
	userRoles  map[int64]map[int64]struct{} // user id -> role ids
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*Identity),
		roles:     make(map[int64]*Role),
		userRoles: make(map[int64]map[int64]struct{}),
	}
}

func (s *MemoryStore) FindByLogin(ctx context.Context, login string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Identity, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Create(ctx context.Context, ident *Identity, roleIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == ident.Login {
			return ErrDuplicateLogin
		}
	}
	// Validate every role before touching state so a bad role ID leaves
	// no half-created user behind.
	next := make(map[int64]struct{}, len(roleIDs))
	for _, roleID := range roleIDs {
		if _, ok := s.roles[roleID]; !ok {
			return fmt.Errorf("role %d: %w", roleID, ErrNotFound)
		}
		next[roleID] = struct{}{}
	}
	s.nextUserID++
	ident.ID = s.nextUserID
	now := time.Now().UTC()
	ident.CreatedAt = now
	ident.UpdatedAt = now
	cp := *ident
	s.users[ident.ID] = &cp
	s.userRoles[ident.ID] = next
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, ident *Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[ident.ID]
	if !ok {
		return ErrNotFound
	}
	for id, u := range s.users {
		if id != ident.ID && u.Login == ident.Login {
			return ErrDuplicateLogin
		}
	}
	cur.Login = ident.Login
	cur.SecretHash = ident.SecretHash
	cur.Active = ident.Active
	cur.UpdatedAt = time.Now().UTC()
	ident.UpdatedAt = cur.UpdatedAt
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = false
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) RolesByLogin(ctx context.Context, login string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login != login {
			continue
		}
		if !u.Active {
			return nil, ErrNotFound
		}
		var names []string
		for roleID := range s.userRoles[u.ID] {
			if r, ok := s.roles[roleID]; ok {
				names = append(names, r.Name)
			}
		}
		return names, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListRoles(ctx context.Context) ([]*Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Role, 0, len(s.roles))
	for _, r := range s.roles {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) CreateRole(ctx context.Context, role *Role) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == role.Name {
			return ErrDuplicateRole
		}
	}
	s.nextRoleID++
	role.ID = s.nextRoleID
	cp := *role
	s.roles[role.ID] = &cp
	return nil
}

func (s *MemoryStore) ReplaceRoles(ctx context.Context, identityID int64, roleIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[identityID]; !ok {
		return ErrNotFound
	}
	next := make(map[int64]struct{}, len(roleIDs))
	for _, roleID := range roleIDs {
		if _, ok := s.roles[roleID]; !ok {
			return fmt.Errorf("role %d: %w", roleID, ErrNotFound)
		}
		next[roleID] = struct{}{}
	}
	s.userRoles[identityID] = next
	return nil
}
