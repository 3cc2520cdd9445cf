package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
)

const maxBodyBytes = 1 << 20

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=72"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type createTenantRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// updateTenantRequest leaves fields that are absent from the body unchanged.
type updateTenantRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

type createUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=100"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	IsSuperuser bool     `json:"is_superuser"`
	TenantIDs   []string `json:"tenant_ids" validate:"omitempty,dive,required"`
}

// decodeJSON reads a single JSON object into dst and validates it.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Wrapf(apperrors.ErrInvalidRequest, "request body is empty")
		}
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "malformed JSON body (%s)", err.Error())
	}
	return s.validateRequest(dst)
}

func (s *Server) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err.Error())
	}
	problems := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Field(), fe.Tag()))
	}
	return apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", strings.Join(problems, ", "))
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
