package postgres

import (
	"context"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/memberships"
)

var _ memberships.Registry = (*membershipRegistry)(nil)

type membershipRegistry struct {
	db DBTX
}

// AddMember relies on the (user_id, tenant_id) primary key for idempotency, concurrent callers
// for the same pair both succeed.
func (r *membershipRegistry) AddMember(ctx context.Context, tenantID, userID string) error {
	if uuid.Validate(tenantID) != nil {
		return apperrors.ErrTenantNotFound
	}
	if uuid.Validate(userID) != nil {
		return apperrors.ErrUserNotFound
	}

	query :=
		`INSERT INTO user_tenants (user_id, tenant_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, tenant_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, tenantID); err != nil {
		return mapError(err, apperrors.ErrTenantNotFound)
	}
	return nil
}

func (r *membershipRegistry) RemoveMember(ctx context.Context, tenantID, userID string) error {
	if uuid.Validate(tenantID) != nil || uuid.Validate(userID) != nil {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_tenants WHERE user_id = $1 AND tenant_id = $2`, userID, tenantID); err != nil {
		return mapError(err, apperrors.ErrTenantNotFound)
	}
	return nil
}

func (r *membershipRegistry) TenantIDs(ctx context.Context, userID string) ([]string, error) {
	if uuid.Validate(userID) != nil {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT tenant_id FROM user_tenants WHERE user_id = $1 ORDER BY tenant_id`, userID)
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	defer rows.Close()

	tenantIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err, apperrors.ErrUserNotFound)
		}
		tenantIDs = append(tenantIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return tenantIDs, nil
}
