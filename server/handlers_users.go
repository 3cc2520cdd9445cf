package server

import (
	"context"
	"net/http"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/rs/zerolog/log"
)

// CreateUserHandler creates an active user and adds it to the requested tenants.
func (s *Server) CreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := s.decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err.Error()))
			return
		}

		// Tenants are checked up front so an unknown id does not leave a half-created user behind.
		for _, tenantID := range req.TenantIDs {
			if _, err := s.store.Tenants().Get(r.Context(), tenantID); err != nil {
				writeError(w, err)
				return
			}
		}

		digest, err := s.hasher.Hash(r.Context(), req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		user := &users.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: digest,
			IsActive:     true,
			IsSuperuser:  req.IsSuperuser,
		}
		user.Normalise()
		if err := s.store.Users().Create(r.Context(), user); err != nil {
			writeError(w, err)
			return
		}

		for _, tenantID := range req.TenantIDs {
			if err := s.store.Memberships().AddMember(r.Context(), tenantID, user.ID); err != nil {
				s.disablePartialUser(r.Context(), user.ID, err)
				writeError(w, err)
				return
			}
		}

		tenantIDs, err := s.store.Memberships().TenantIDs(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("user_id", user.ID).Str("username", user.Username).Bool("superuser", user.IsSuperuser).Msg("user created")
		writeJSON(w, http.StatusCreated, userResponse{User: user, TenantIDs: tenantIDs})
	}
}

// ListUsersHandler returns every user to superusers and, to everyone else, the users that share
// at least one tenant with the caller.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())

		scope, err := s.guard.EffectiveScope(p, "")
		if err != nil {
			writeError(w, err)
			return
		}

		var userList []*users.User
		if scope.All() {
			userList, err = s.store.Users().List(r.Context())
		} else {
			userList, err = s.store.Users().ListByTenants(r.Context(), scope.TenantIDs())
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, userListResponse{Users: userList, Total: len(userList)})
	}
}

// GetUserHandler answers for the caller itself, for superusers, and for users sharing a tenant with the caller.
func (s *Server) GetUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())

		user, err := s.store.Users().GetByID(r.Context(), r.PathValue(PathUserID))
		if err != nil {
			writeError(w, err)
			return
		}

		tenantIDs, err := s.store.Memberships().TenantIDs(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}

		if user.ID != p.UserID && !p.IsSuperuser && !sharesTenant(p.TenantIDs.Contains, tenantIDs) {
			writeError(w, apperrors.ErrForbidden)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{User: user, TenantIDs: tenantIDs})
	}
}

// DeleteUserHandler soft-disables the user. Its tokens stop resolving immediately.
func (s *Server) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		userID := r.PathValue(PathUserID)
		if userID == p.UserID {
			writeError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "cannot disable your own account"))
			return
		}

		if err := s.store.Users().SetActive(r.Context(), userID, false); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("user_id", userID).Str("by", p.UserID).Msg("user disabled")
		w.WriteHeader(http.StatusNoContent)
	}
}

// disablePartialUser deactivates a user whose memberships could not all be created, so it cannot
// log in with access narrower than requested.
func (s *Server) disablePartialUser(ctx context.Context, userID string, cause error) {
	if err := s.store.Users().SetActive(context.WithoutCancel(ctx), userID, false); err != nil {
		log.Err(err).Str("user_id", userID).Msg("failed to disable partially created user")
		return
	}
	log.Warn().Err(cause).Str("user_id", userID).Msg("membership failed, disabled new user")
}

func sharesTenant(member func(string) bool, tenantIDs []string) bool {
	for _, id := range tenantIDs {
		if member(id) {
			return true
		}
	}
	return false
}
