package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/tenants"
)

const tenantColumns = `id, name, description, created_at, updated_at`

var _ tenants.Repo = (*tenantRepo)(nil)

type tenantRepo struct {
	db DBTX
}

func (r *tenantRepo) Create(ctx context.Context, tenant *tenants.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}

	query :=
		`INSERT INTO tenants (id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, tenant.ID, tenant.Name, tenant.Description).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return mapError(err, apperrors.ErrTenantNotFound)
	}
	return nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *tenants.Tenant) error {
	if uuid.Validate(tenant.ID) != nil {
		return apperrors.ErrTenantNotFound
	}

	query :=
		`UPDATE tenants SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, tenant.ID, tenant.Name, tenant.Description).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return mapError(err, apperrors.ErrTenantNotFound)
	}
	return nil
}

func (r *tenantRepo) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	if uuid.Validate(tenantID) != nil {
		return nil, apperrors.ErrTenantNotFound
	}

	t, err := scanTenant(r.db.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, tenantID))
	if err != nil {
		return nil, mapError(err, apperrors.ErrTenantNotFound)
	}
	return t, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]*tenants.Tenant, error) {
	return r.scanMany(r.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name`))
}

func (r *tenantRepo) ListByIDs(ctx context.Context, tenantIDs []string) ([]*tenants.Tenant, error) {
	ids := validIDs(tenantIDs)
	if len(ids) == 0 {
		return []*tenants.Tenant{}, nil
	}
	return r.scanMany(r.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ANY($1) ORDER BY name`, ids))
}

// Delete removes the tenant; memberships go with it through ON DELETE CASCADE.
func (r *tenantRepo) Delete(ctx context.Context, tenantID string) error {
	if uuid.Validate(tenantID) != nil {
		return apperrors.ErrTenantNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, tenantID)
	if err != nil {
		return mapError(err, apperrors.ErrTenantNotFound)
	}
	return requireRow(res, apperrors.ErrTenantNotFound)
}

func (r *tenantRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tenants`).Scan(&count); err != nil {
		return 0, mapError(err, apperrors.ErrTenantNotFound)
	}
	return count, nil
}

func scanTenant(row rowScanner) (*tenants.Tenant, error) {
	t := &tenants.Tenant{}
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) scanMany(rows *sql.Rows, err error) ([]*tenants.Tenant, error) {
	if err != nil {
		return nil, mapError(err, apperrors.ErrTenantNotFound)
	}
	defer rows.Close()

	tenantList := make([]*tenants.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, mapError(err, apperrors.ErrTenantNotFound)
		}
		tenantList = append(tenantList, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, apperrors.ErrTenantNotFound)
	}
	return tenantList, nil
}
