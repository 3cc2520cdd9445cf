package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/tenants"
)

var _ tenants.Repo = (*tenantRepo)(nil)

type tenantRepo struct {
	s *Store
}

func (tr *tenantRepo) Create(_ context.Context, tenant *tenants.Tenant) error {
	tr.s.lock.Lock()
	defer tr.s.lock.Unlock()

	if _, ok := tr.s.tenantNames[tenant.Name]; ok {
		return apperrors.Wrapf(apperrors.ErrConflict, "tenant name %q", tenant.Name)
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	now := tr.s.nowFunc()
	tenant.CreatedAt, tenant.UpdatedAt = now, now

	stored := *tenant
	tr.s.tenants[tenant.ID] = &stored
	tr.s.tenantNames[tenant.Name] = tenant.ID
	return nil
}

func (tr *tenantRepo) Update(_ context.Context, tenant *tenants.Tenant) error {
	tr.s.lock.Lock()
	defer tr.s.lock.Unlock()

	existing, ok := tr.s.tenants[tenant.ID]
	if !ok {
		return apperrors.ErrTenantNotFound
	}
	if id, ok := tr.s.tenantNames[tenant.Name]; ok && id != tenant.ID {
		return apperrors.Wrapf(apperrors.ErrConflict, "tenant name %q", tenant.Name)
	}

	delete(tr.s.tenantNames, existing.Name)
	tenant.CreatedAt = existing.CreatedAt
	tenant.UpdatedAt = tr.s.nowFunc()
	stored := *tenant
	tr.s.tenants[tenant.ID] = &stored
	tr.s.tenantNames[tenant.Name] = tenant.ID
	return nil
}

func (tr *tenantRepo) Get(_ context.Context, tenantID string) (*tenants.Tenant, error) {
	tr.s.lock.RLock()
	defer tr.s.lock.RUnlock()

	tenant, ok := tr.s.tenants[tenantID]
	if !ok {
		return nil, apperrors.ErrTenantNotFound
	}
	found := *tenant
	return &found, nil
}

func (tr *tenantRepo) List(_ context.Context) ([]*tenants.Tenant, error) {
	tr.s.lock.RLock()
	defer tr.s.lock.RUnlock()

	tenantList := make([]*tenants.Tenant, 0, len(tr.s.tenants))
	for _, t := range tr.s.tenants {
		found := *t
		tenantList = append(tenantList, &found)
	}
	sortTenants(tenantList)
	return tenantList, nil
}

func (tr *tenantRepo) ListByIDs(_ context.Context, tenantIDs []string) ([]*tenants.Tenant, error) {
	tr.s.lock.RLock()
	defer tr.s.lock.RUnlock()

	tenantList := make([]*tenants.Tenant, 0, len(tenantIDs))
	seen := make(map[string]struct{}, len(tenantIDs))
	for _, id := range tenantIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if t, ok := tr.s.tenants[id]; ok {
			found := *t
			tenantList = append(tenantList, &found)
		}
	}
	sortTenants(tenantList)
	return tenantList, nil
}

// Delete removes the tenant and every membership that references it.
func (tr *tenantRepo) Delete(_ context.Context, tenantID string) error {
	tr.s.lock.Lock()
	defer tr.s.lock.Unlock()

	tenant, ok := tr.s.tenants[tenantID]
	if !ok {
		return apperrors.ErrTenantNotFound
	}
	delete(tr.s.tenants, tenantID)
	delete(tr.s.tenantNames, tenant.Name)

	for userID, tenantSet := range tr.s.members {
		delete(tenantSet, tenantID)
		if len(tenantSet) == 0 {
			delete(tr.s.members, userID)
		}
	}
	return nil
}

func (tr *tenantRepo) Count(_ context.Context) (int, error) {
	tr.s.lock.RLock()
	defer tr.s.lock.RUnlock()
	return len(tr.s.tenants), nil
}

func sortTenants(tenantList []*tenants.Tenant) {
	sort.Slice(tenantList, func(i, j int) bool {
		return tenantList[i].Name < tenantList[j].Name
	})
}
