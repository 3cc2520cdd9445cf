// Package memberships defines the user to tenant relation.
package memberships

import "context"

// Registry mutates and reads the many-to-many relation between users and tenants.
// It holds no authorization logic; callers decide who may change memberships.
type Registry interface {
	// AddMember makes userID a member of tenantID. Adding an existing membership is a no-op.
	// Unknown tenants or users return errors.ErrTenantNotFound or errors.ErrUserNotFound.
	AddMember(ctx context.Context, tenantID, userID string) error
	// RemoveMember deletes the membership. Removing an absent membership is a no-op.
	RemoveMember(ctx context.Context, tenantID, userID string) error
	// TenantIDs returns the ids of every tenant userID belongs to, sorted.
	TenantIDs(ctx context.Context, userID string) ([]string, error)
}
