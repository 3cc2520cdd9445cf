package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/casnet-auth/access"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPrincipal stores the authenticated *principal.Principal
	ContextKeyPrincipal ContextKey = "principal"
	// ContextKeyTenantScope stores the access.Scope granted for the {tenant_id} path value
	ContextKeyTenantScope ContextKey = "tenant_scope"
)

// PrincipalFromContext returns the principal stored by RequireAuth.
func PrincipalFromContext(ctx context.Context) (*principal.Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*principal.Principal)
	return p, ok && p != nil
}

// TenantScopeFromContext returns the scope stored by RequireTenantAccess.
func TenantScopeFromContext(ctx context.Context) (access.Scope, bool) {
	scope, ok := ctx.Value(ContextKeyTenantScope).(access.Scope)
	return scope, ok
}

// RequireAuth is middleware that validates a Bearer access token and loads the caller's principal.
// Every token problem produces the same 401.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, err := s.resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, p)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireSuperuser is middleware that rejects callers without the superuser flag.
// Should be chained after RequireAuth.
func (s *Server) RequireSuperuser() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || !p.IsSuperuser {
				if ok {
					log.Debug().Str("user_id", p.UserID).Str("path", r.URL.Path).Msg("superuser required")
				}
				writeJSONError(w, errorCodeForbidden, "Superuser privileges required", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

// RequireTenantAccess is middleware that authorizes the {tenant_id} path value against the caller
// and stores the resulting scope. Should be chained after RequireAuth.
func (s *Server) RequireTenantAccess() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			p, _ := PrincipalFromContext(r.Context())
			tenantID := r.PathValue(PathTenantID)
			if tenantID == "" {
				writeJSONError(w, errorCodeInvalidRequest, "tenant id is required", http.StatusBadRequest)
				return
			}

			scope, err := s.guard.EffectiveScope(p, tenantID)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyTenantScope, scope)
			next(w, r.WithContext(ctx))
		}
	}
}
