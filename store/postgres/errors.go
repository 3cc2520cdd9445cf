package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"

	constraintMembershipTenant = "user_tenants_tenant_fkey"
)

// mapError turns driver errors into the service's sentinels. notFound is returned for sql.ErrNoRows.
func mapError(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperrors.Wrapf(apperrors.ErrConflict, "constraint %s", pgErr.ConstraintName)
		case codeForeignKeyViolation:
			if pgErr.ConstraintName == constraintMembershipTenant {
				return apperrors.ErrTenantNotFound
			}
			return apperrors.ErrUserNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// validIDs drops ids that cannot be uuids; postgres would reject the whole statement otherwise.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
