// Package principal builds the per-request identity from the user and membership stores.
package principal

import (
	"context"
	"sort"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/memberships"
	"github.com/jrsteele09/casnet-auth/users"
)

// TenantSet is an immutable set of tenant ids.
type TenantSet struct {
	ids map[string]struct{}
}

func NewTenantSet(ids ...string) TenantSet {
	set := TenantSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		set.ids[id] = struct{}{}
	}
	return set
}

func (s TenantSet) Contains(tenantID string) bool {
	_, ok := s.ids[tenantID]
	return ok
}

func (s TenantSet) Len() int {
	return len(s.ids)
}

// Slice returns the ids sorted.
func (s TenantSet) Slice() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Principal is the resolved identity of one request. It is built fresh per request and never cached.
type Principal struct {
	UserID      string
	Username    string
	IsSuperuser bool
	TenantIDs   TenantSet
}

// Store loads principals.
type Store struct {
	users       users.Repo
	memberships memberships.Registry
}

func NewStore(users users.Repo, memberships memberships.Registry) *Store {
	return &Store{users: users, memberships: memberships}
}

// Load returns the principal for userID. A disabled user is reported as ErrUserNotFound, like a missing one.
func (s *Store) Load(ctx context.Context, userID string) (*Principal, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserNotFound
	}

	tenantIDs, err := s.memberships.TenantIDs(ctx, user.ID)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[principal Load] tenants for user %s", user.ID)
	}

	return &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
		TenantIDs:   NewTenantSet(tenantIDs...),
	}, nil
}
