package tenants

import "context"

// Repo persists tenants. Unknown ids return errors.ErrTenantNotFound, duplicate names errors.ErrConflict.
// Delete removes the tenant's memberships with it.
type Repo interface {
	Create(ctx context.Context, tenant *Tenant) error
	Update(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	ListByIDs(ctx context.Context, tenantIDs []string) ([]*Tenant, error)
	Delete(ctx context.Context, tenantID string) error
	Count(ctx context.Context) (int, error)
}
