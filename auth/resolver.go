// Package auth turns credentials into tokens and bearer tokens into principals.
package auth

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/metrics"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/jrsteele09/casnet-auth/token"
	"github.com/rs/zerolog/log"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the part of token.Manager the resolver needs.
type TokenVerifier interface {
	Verify(rawToken string, expected token.Type) (*token.Claims, error)
}

// PrincipalLoader is implemented by principal.Store.
type PrincipalLoader interface {
	Load(ctx context.Context, userID string) (*principal.Principal, error)
}

// Resolver derives the principal of a request from its Authorization header.
type Resolver struct {
	tokens     TokenVerifier
	principals PrincipalLoader
}

func NewResolver(tokens TokenVerifier, principals PrincipalLoader) *Resolver {
	return &Resolver{tokens: tokens, principals: principals}
}

// Resolve accepts exactly "Bearer <token>". Every header, token or unknown-user problem returns
// ErrUnauthenticated; the cause is only logged and counted. Other storage errors are returned as is.
func (r *Resolver) Resolve(ctx context.Context, header string) (*principal.Principal, error) {
	if header == "" {
		return nil, reject(metrics.ReasonMissingHeader, nil)
	}

	rawToken, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || rawToken == "" || strings.ContainsAny(rawToken, " \t") {
		return nil, reject(metrics.ReasonMalformedHeader, nil)
	}

	claims, err := r.tokens.Verify(rawToken, token.TypeAccess)
	if err != nil {
		return nil, reject(tokenFailureReason(err), err)
	}

	p, err := r.principals.Load(ctx, claims.UserID())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, reject(metrics.ReasonUnknownUser, err)
		}
		return nil, apperrors.Wrapf(err, "[auth Resolve] loading principal")
	}
	return p, nil
}

func reject(reason string, cause error) error {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	event := log.Debug().Str("reason", reason)
	if cause != nil {
		event = event.Err(cause)
	}
	event.Msg("authentication rejected")
	return apperrors.ErrUnauthenticated
}

func tokenFailureReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrTokenExpired):
		return metrics.ReasonTokenExpired
	case apperrors.Is(err, apperrors.ErrInvalidSignature):
		return metrics.ReasonBadSignature
	case apperrors.Is(err, apperrors.ErrWrongTokenType):
		return metrics.ReasonWrongTokenType
	default:
		return metrics.ReasonTokenMalformed
	}
}
