package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth service
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors. These never leave the service in distinct form, they fold into ErrUnauthenticated.
	ErrTokenMalformed   = errors.New("token malformed")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrWrongTokenType   = errors.New("wrong token type")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")
	ErrForbidden      = errors.New("not authorized for tenant")

	// General errors
	ErrConflict       = errors.New("resource already exists")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRateLimited    = errors.New("too many requests")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsNotFound reports whether err is one of the not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrTenantNotFound)
}
