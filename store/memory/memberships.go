package memory

import (
	"context"
	"sort"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/memberships"
)

var _ memberships.Registry = (*membershipRegistry)(nil)

type membershipRegistry struct {
	s *Store
}

func (mr *membershipRegistry) AddMember(_ context.Context, tenantID, userID string) error {
	mr.s.lock.Lock()
	defer mr.s.lock.Unlock()

	if _, ok := mr.s.tenants[tenantID]; !ok {
		return apperrors.ErrTenantNotFound
	}
	if _, ok := mr.s.users[userID]; !ok {
		return apperrors.ErrUserNotFound
	}

	tenantSet, ok := mr.s.members[userID]
	if !ok {
		tenantSet = make(map[string]struct{})
		mr.s.members[userID] = tenantSet
	}
	tenantSet[tenantID] = struct{}{}
	return nil
}

func (mr *membershipRegistry) RemoveMember(_ context.Context, tenantID, userID string) error {
	mr.s.lock.Lock()
	defer mr.s.lock.Unlock()

	tenantSet, ok := mr.s.members[userID]
	if !ok {
		return nil
	}
	delete(tenantSet, tenantID)
	if len(tenantSet) == 0 {
		delete(mr.s.members, userID)
	}
	return nil
}

func (mr *membershipRegistry) TenantIDs(_ context.Context, userID string) ([]string, error) {
	mr.s.lock.RLock()
	defer mr.s.lock.RUnlock()

	tenantIDs := make([]string, 0, len(mr.s.members[userID]))
	for id := range mr.s.members[userID] {
		tenantIDs = append(tenantIDs, id)
	}
	sort.Strings(tenantIDs)
	return tenantIDs, nil
}
