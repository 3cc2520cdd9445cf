// Package access decides which tenants a principal may touch.
package access

import (
	"github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/metrics"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/rs/zerolog/log"
)

// Scope is the set of tenants a request may operate on. The zero value allows nothing.
type Scope struct {
	all bool
	ids principal.TenantSet
}

// AllTenants is the superuser scope. It is a sentinel, the tenants are never enumerated.
func AllTenants() Scope {
	return Scope{all: true}
}

func Tenants(ids ...string) Scope {
	return Scope{ids: principal.NewTenantSet(ids...)}
}

// All reports whether the scope is unrestricted.
func (s Scope) All() bool {
	return s.all
}

// TenantIDs returns the sorted ids of a restricted scope, nil for AllTenants.
func (s Scope) TenantIDs() []string {
	if s.all {
		return nil
	}
	return s.ids.Slice()
}

func (s Scope) Contains(tenantID string) bool {
	return s.all || s.ids.Contains(tenantID)
}

// Guard applies the membership rule: superusers reach every tenant, everyone else only their own.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// AuthorizeSingle returns nil when p may access tenantID, errors.ErrForbidden otherwise.
func (g *Guard) AuthorizeSingle(p *principal.Principal, tenantID string) error {
	if p == nil {
		return errors.ErrForbidden
	}
	if p.IsSuperuser || p.TenantIDs.Contains(tenantID) {
		return nil
	}

	metrics.TenantAccessDenied.Inc()
	log.Debug().Str("user_id", p.UserID).Str("tenant_id", tenantID).Msg("tenant access denied")
	return errors.ErrForbidden
}

// EffectiveScope narrows to requestedTenantID when one is given, otherwise returns everything p may see.
func (g *Guard) EffectiveScope(p *principal.Principal, requestedTenantID string) (Scope, error) {
	if requestedTenantID != "" {
		if err := g.AuthorizeSingle(p, requestedTenantID); err != nil {
			return Scope{}, err
		}
		return Tenants(requestedTenantID), nil
	}

	if p == nil {
		return Scope{}, errors.ErrForbidden
	}
	if p.IsSuperuser {
		return AllTenants(), nil
	}
	return Tenants(p.TenantIDs.Slice()...), nil
}
