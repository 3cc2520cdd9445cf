// Package store ties the identity repositories together behind one handle.
package store

import (
	"github.com/jrsteele09/casnet-auth/memberships"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
)

// Store is implemented by store/memory and store/postgres.
type Store interface {
	Users() users.Repo
	Tenants() tenants.Repo
	Memberships() memberships.Registry
	Close() error
}
