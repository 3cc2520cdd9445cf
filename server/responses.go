package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"

	errorCodeInvalidCredentials = "invalid_credentials"
	errorCodeUnauthenticated    = "unauthenticated"
	errorCodeForbidden          = "forbidden"
	errorCodeNotFound           = "not_found"
	errorCodeConflict           = "conflict"
	errorCodeInvalidRequest     = "invalid_request"
	errorCodeRateLimited        = "rate_limited"
	errorCodeServer             = "server_error"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tenantSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type meResponse struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email"`
	IsSuperuser bool            `json:"is_superuser"`
	Tenants     []tenantSummary `json:"tenants"`
}

type logoutResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

type userResponse struct {
	*users.User
	TenantIDs []string `json:"tenant_ids"`
}

type tenantListResponse struct {
	Tenants []*tenants.Tenant `json:"tenants"`
	Total   int               `json:"total"`
}

type userListResponse struct {
	Users []*users.User `json:"users"`
	Total int           `json:"total"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeError maps service errors onto status codes. Authentication failures get a fixed message;
// anything unrecognised is logged and reported as a server error without details.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSONError(w, errorCodeInvalidCredentials, "Incorrect username or password", http.StatusUnauthorized)
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSONError(w, errorCodeUnauthenticated, "Could not validate credentials", http.StatusUnauthorized)
	case apperrors.Is(err, apperrors.ErrForbidden):
		writeJSONError(w, errorCodeForbidden, "Not authorized to access this tenant", http.StatusForbidden)
	case apperrors.Is(err, apperrors.ErrTenantNotFound):
		writeJSONError(w, errorCodeNotFound, "Tenant not found", http.StatusNotFound)
	case apperrors.Is(err, apperrors.ErrUserNotFound):
		writeJSONError(w, errorCodeNotFound, "User not found", http.StatusNotFound)
	case apperrors.Is(err, apperrors.ErrConflict):
		writeJSONError(w, errorCodeConflict, err.Error(), http.StatusConflict)
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		writeJSONError(w, errorCodeInvalidRequest, err.Error(), http.StatusBadRequest)
	case apperrors.Is(err, apperrors.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeJSONError(w, errorCodeRateLimited, "Too many requests", http.StatusTooManyRequests)
	default:
		log.Err(err).Msg("request failed")
		writeJSONError(w, errorCodeServer, "Internal server error", http.StatusInternalServerError)
	}
}
