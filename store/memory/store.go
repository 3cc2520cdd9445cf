// Package memory is an in-process implementation of store.Store. One lock guards users, tenants and
// memberships together so that deletes cascade atomically.
package memory

import (
	"sync"
	"time"

	"github.com/jrsteele09/casnet-auth/memberships"
	"github.com/jrsteele09/casnet-auth/store"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	lock sync.RWMutex

	users     map[string]*users.User
	usernames map[string]string // username to user id
	emails    map[string]string // email to user id

	tenants     map[string]*tenants.Tenant
	tenantNames map[string]string // tenant name to tenant id

	members map[string]map[string]struct{} // user id to set of tenant ids

	nowFunc func() time.Time
}

func New() *Store {
	return &Store{
		users:       make(map[string]*users.User),
		usernames:   make(map[string]string),
		emails:      make(map[string]string),
		tenants:     make(map[string]*tenants.Tenant),
		tenantNames: make(map[string]string),
		members:     make(map[string]map[string]struct{}),
		nowFunc:     time.Now,
	}
}

func (s *Store) Users() users.Repo {
	return &userRepo{s: s}
}

func (s *Store) Tenants() tenants.Repo {
	return &tenantRepo{s: s}
}

func (s *Store) Memberships() memberships.Registry {
	return &membershipRegistry{s: s}
}

func (s *Store) Close() error {
	return nil
}
