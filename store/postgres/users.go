package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/users"
)

const userColumns = `id, username, email, password_hash, is_active, is_superuser, created_at, updated_at`

var _ users.Repo = (*userRepo)(nil)

type userRepo struct {
	db DBTX
}

func (r *userRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query :=
		`INSERT INTO users (id, username, email, password_hash, is_active, is_superuser)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsSuperuser).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapError(err, apperrors.ErrUserNotFound)
	}
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *users.User) error {
	if uuid.Validate(user.ID) != nil {
		return apperrors.ErrUserNotFound
	}

	query :=
		`UPDATE users
		 SET username = $2, email = $3, password_hash = $4, is_active = $5, is_superuser = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsActive, user.IsSuperuser).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapError(err, apperrors.ErrUserNotFound)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	if uuid.Validate(id) != nil {
		return nil, apperrors.ErrUserNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username))
}

func (r *userRepo) List(ctx context.Context) ([]*users.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`
	return r.scanMany(r.db.QueryContext(ctx, query))
}

func (r *userRepo) ListByTenants(ctx context.Context, tenantIDs []string) ([]*users.User, error) {
	ids := validIDs(tenantIDs)
	if len(ids) == 0 {
		return []*users.User{}, nil
	}

	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id IN (SELECT user_id FROM user_tenants WHERE tenant_id = ANY($1))
		 ORDER BY username`
	return r.scanMany(r.db.QueryContext(ctx, query, ids))
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	if uuid.Validate(id) != nil {
		return apperrors.ErrUserNotFound
	}

	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return mapError(err, apperrors.ErrUserNotFound)
	}
	return requireRow(res, apperrors.ErrUserNotFound)
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
		return 0, mapError(err, apperrors.ErrUserNotFound)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*users.User, error) {
	u := &users.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepo) scanOne(row *sql.Row) (*users.User, error) {
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return u, nil
}

func (r *userRepo) scanMany(rows *sql.Rows, err error) ([]*users.User, error) {
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	defer rows.Close()

	userList := make([]*users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, apperrors.ErrUserNotFound)
		}
		userList = append(userList, u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return userList, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, notFound)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
