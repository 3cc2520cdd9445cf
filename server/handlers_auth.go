package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
)

// LoginHandler exchanges form-encoded username and password for a token pair.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed form body"))
			return
		}

		req := loginRequest{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}
		if err := s.validateRequest(&req); err != nil {
			writeError(w, err)
			return
		}

		pair, err := s.auth.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken:  pair.AccessToken,
			TokenType:    pair.TokenType,
			ExpiresIn:    pair.ExpiresIn,
			RefreshToken: pair.RefreshToken,
		})
	}
}

// RefreshHandler accepts refresh_token as a form field or in a JSON body.
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if isJSON(r) {
			if err := s.decodeJSON(w, r, &req); err != nil {
				writeError(w, err)
				return
			}
		} else {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			if err := r.ParseForm(); err != nil {
				writeError(w, apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed form body"))
				return
			}
			req.RefreshToken = r.PostFormValue("refresh_token")
			if err := s.validateRequest(&req); err != nil {
				writeError(w, err)
				return
			}
		}

		pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: pair.AccessToken,
			TokenType:   pair.TokenType,
			ExpiresIn:   pair.ExpiresIn,
		})
	}
}

// MeHandler describes the caller and the tenants it belongs to.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())

		user, err := s.store.Users().GetByID(r.Context(), p.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		tenantList, err := s.store.Tenants().ListByIDs(r.Context(), p.TenantIDs.Slice())
		if err != nil {
			writeError(w, err)
			return
		}

		summaries := make([]tenantSummary, 0, len(tenantList))
		for _, t := range tenantList {
			summaries = append(summaries, tenantSummary{ID: t.ID, Name: t.Name})
		}

		writeJSON(w, http.StatusOK, meResponse{
			ID:          user.ID,
			Username:    user.Username,
			Email:       user.Email,
			IsSuperuser: user.IsSuperuser,
			Tenants:     summaries,
		})
	}
}

// LogoutHandler only acknowledges the logout. Tokens are discarded by the client and stay valid
// until they expire.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFromContext(r.Context())
		writeJSON(w, http.StatusOK, logoutResponse{Message: "Successfully logged out", User: p.Username})
	}
}
