package server

import (
	"net/http"

	"github.com/jrsteele09/casnet-auth/internal/utils"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/rs/zerolog/log"
)

// ListTenantsHandler lists the tenants in the caller's effective scope, narrowed by ?tenant_id=.
func (s *Server) ListTenantsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())

		scope, err := s.guard.EffectiveScope(p, r.URL.Query().Get(PathTenantID))
		if err != nil {
			writeError(w, err)
			return
		}

		var tenantList []*tenants.Tenant
		if scope.All() {
			tenantList, err = s.store.Tenants().List(r.Context())
		} else {
			tenantList, err = s.store.Tenants().ListByIDs(r.Context(), scope.TenantIDs())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenantListResponse{Tenants: tenantList, Total: len(tenantList)})
	}
}

func (s *Server) CreateTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTenantRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		tenant := &tenants.Tenant{Name: req.Name, Description: req.Description}
		tenant.Normalise()
		if err := s.validateRequest(&createTenantRequest{Name: tenant.Name, Description: tenant.Description}); err != nil {
			writeError(w, err)
			return
		}

		if err := s.store.Tenants().Create(r.Context(), tenant); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("tenant_id", tenant.ID).Str("name", tenant.Name).Msg("tenant created")
		writeJSON(w, http.StatusCreated, tenant)
	}
}

func (s *Server) GetTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := s.store.Tenants().Get(r.Context(), r.PathValue(PathTenantID))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

func (s *Server) UpdateTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateTenantRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		tenant, err := s.store.Tenants().Get(r.Context(), r.PathValue(PathTenantID))
		if err != nil {
			writeError(w, err)
			return
		}

		tenant.Name = utils.ValueOr(req.Name, tenant.Name)
		tenant.Description = utils.ValueOr(req.Description, tenant.Description)
		tenant.Normalise()
		if err := s.validateRequest(&createTenantRequest{Name: tenant.Name, Description: tenant.Description}); err != nil {
			writeError(w, err)
			return
		}

		if err := s.store.Tenants().Update(r.Context(), tenant); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tenant)
	}
}

// DeleteTenantHandler removes the tenant together with its memberships.
func (s *Server) DeleteTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.PathValue(PathTenantID)
		if err := s.store.Tenants().Delete(r.Context(), tenantID); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("tenant_id", tenantID).Msg("tenant deleted")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListMembersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := s.store.Tenants().Get(r.Context(), r.PathValue(PathTenantID))
		if err != nil {
			writeError(w, err)
			return
		}

		members, err := s.store.Users().ListByTenants(r.Context(), []string{tenant.ID})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userListResponse{Users: members, Total: len(members)})
	}
}

// AddMemberHandler is idempotent: adding an existing member answers 204 as well.
func (s *Server) AddMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, userID := r.PathValue(PathTenantID), r.PathValue(PathUserID)
		if err := s.store.Memberships().AddMember(r.Context(), tenantID, userID); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Msg("member added")
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveMemberHandler is idempotent: removing an absent membership answers 204.
func (s *Server) RemoveMemberHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, userID := r.PathValue(PathTenantID), r.PathValue(PathUserID)
		if err := s.store.Memberships().RemoveMember(r.Context(), tenantID, userID); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("tenant_id", tenantID).Str("user_id", userID).Msg("member removed")
		w.WriteHeader(http.StatusNoContent)
	}
}
