package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"authgate/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store over database/sql with the pgx driver.
//
// Schema:
//
//	users(id bigserial pk, login text unique, secret_hash text, active bool,
//	      created_at timestamptz, updated_at timestamptz)
//	roles(id bigserial pk, name text unique)
//	user_roles(user_id bigint fk, role_id bigint fk, pk(user_id, role_id))
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (s *PostgresStore) FindByLogin(ctx context.Context, login string) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, login, secret_hash, active, created_at, updated_at
		   from users where login = $1`, login)
	return scanIdentity(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, login, secret_hash, active, created_at, updated_at
		   from users where id = $1`, id)
	return scanIdentity(row)
}

func scanIdentity(row *sql.Row) (*Identity, error) {
	var ident Identity
	err := row.Scan(&ident.ID, &ident.Login, &ident.SecretHash, &ident.Active, &ident.CreatedAt, &ident.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ident, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, login, secret_hash, active, created_at, updated_at
		   from users order by login`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Identity
	for rows.Next() {
		var ident Identity
		if err := rows.Scan(&ident.ID, &ident.Login, &ident.SecretHash, &ident.Active, &ident.CreatedAt, &ident.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &ident)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, ident *Identity, roleIDs []int64) error {
	// User row and join rows commit together; an unknown role rolls the
	// whole create back, so no orphaned login blocks a retry.
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`insert into users(login, secret_hash, active, created_at, updated_at)
			 values($1, $2, $3, now(), now())
			 returning id, created_at, updated_at`,
			ident.Login, ident.SecretHash, ident.Active,
		).Scan(&ident.ID, &ident.CreatedAt, &ident.UpdatedAt); err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			res, err := tx.ExecContext(ctx,
				`insert into user_roles(user_id, role_id)
				 select $1, id from roles where id = $2`, ident.ID, roleID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("role %d: %w", roleID, ErrNotFound)
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return ErrDuplicateLogin
	}
	return err
}

func (s *PostgresStore) Update(ctx context.Context, ident *Identity) error {
	res, err := s.db.ExecContext(ctx,
		`update users
		    set login = $2, secret_hash = $3, active = $4, updated_at = now()
		  where id = $1`,
		ident.ID, ident.Login, ident.SecretHash, ident.Active)
	if isUniqueViolation(err) {
		return ErrDuplicateLogin
	}
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) Deactivate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`update users set active = false, updated_at = now() where id = $1`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *PostgresStore) RolesByLogin(ctx context.Context, login string) ([]string, error) {
	// Single join query so the request authorizer costs one lookup.
	// The active filter is what makes deactivation take effect on the
	// very next request, unexpired token or not.
	rows, err := s.db.QueryContext(ctx,
		`select r.name
		   from users u
		   join user_roles ur on ur.user_id = u.id
		   join roles r on r.id = ur.role_id
		  where u.login = $1 and u.active`, login)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		// Distinguish "no roles assigned" from "no such active identity".
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`select exists(select 1 from users where login = $1 and active)`, login).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrNotFound
		}
	}
	return names, nil
}

func (s *PostgresStore) ListRoles(ctx context.Context) ([]*Role, error) {
	rows, err := s.db.QueryContext(ctx, `select id, name from roles order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Role
	for rows.Next() {
		var r Role
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateRole(ctx context.Context, role *Role) error {
	err := s.db.QueryRowContext(ctx,
		`insert into roles(name) values($1) returning id`, role.Name).Scan(&role.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateRole
	}
	return err
}

func (s *PostgresStore) ReplaceRoles(ctx context.Context, identityID int64, roleIDs []int64) error {
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`select exists(select 1 from users where id = $1)`, identityID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`delete from user_roles where user_id = $1`, identityID); err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			res, err := tx.ExecContext(ctx,
				`insert into user_roles(user_id, role_id)
				 select $1, id from roles where id = $2`, identityID, roleID)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("role %d: %w", roleID, ErrNotFound)
			}
		}
		return nil
	})
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
