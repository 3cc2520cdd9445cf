package auth

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/metrics"
	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/token"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	TokenTypeBearer = "bearer"

	// dummyPassword is hashed once and verified against for unknown usernames, so that a missing
	// account costs the same bcrypt work as a wrong password.
	dummyPassword = "casnet-timing-equaliser"
)

// TokenPair is the result of a successful login or refresh. RefreshToken is empty after a refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// Service authenticates credentials and exchanges refresh tokens.
type Service struct {
	users      users.Repo
	hasher     password.Hasher
	tokens     *token.Manager
	principals PrincipalLoader

	dummyMu     sync.Mutex
	dummyDigest string
}

func NewService(userRepo users.Repo, hasher password.Hasher, tokens *token.Manager, principals PrincipalLoader) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewService] hasher is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewService] token manager is required")
	}
	if principals == nil {
		return nil, errors.New("[NewService] principal loader is required")
	}
	return &Service{users: userRepo, hasher: hasher, tokens: tokens, principals: principals}, nil
}

// Login checks username and password and issues an access and a refresh token. Unknown users,
// wrong passwords and disabled users all return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, plaintext string) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, errors.Wrap(err, "[Service.Login] GetByUsername")
		}
		s.hasher.Verify(ctx, plaintext, s.dummy(ctx))
		return nil, s.loginFailed(username, "unknown_user")
	}

	if !s.hasher.Verify(ctx, plaintext, user.PasswordHash) {
		return nil, s.loginFailed(username, "wrong_password")
	}
	if !user.IsActive {
		return nil, s.loginFailed(username, "inactive_user")
	}

	accessToken, err := s.tokens.IssueAccess(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] IssueAccess")
	}
	refreshToken, err := s.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] IssueRefresh")
	}

	metrics.Logins.WithLabelValues("success").Inc()
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("login succeeded")
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(s.tokens.AccessTokenExpiry().Seconds()),
	}, nil
}

// Refresh issues a new access token for a valid refresh token whose subject is still an active
// user. The presented refresh token is not rotated and stays valid until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, token.TypeRefresh)
	if err != nil {
		return nil, reject(tokenFailureReason(err), err)
	}

	if _, err := s.principals.Load(ctx, claims.UserID()); err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, reject(metrics.ReasonUnknownUser, err)
		}
		return nil, errors.Wrap(err, "[Service.Refresh] loading principal")
	}

	accessToken, err := s.tokens.IssueAccess(claims.UserID())
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] IssueAccess")
	}
	return &TokenPair{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int(s.tokens.AccessTokenExpiry().Seconds()),
	}, nil
}

func (s *Service) loginFailed(username, cause string) error {
	metrics.Logins.WithLabelValues("invalid_credentials").Inc()
	log.Debug().Str("username", username).Str("cause", cause).Msg("login failed")
	return apperrors.ErrInvalidCredentials
}

// dummy returns a digest with the hasher's cost. A client disconnect does not interrupt building
// it, and a failed attempt is retried on the next unknown user instead of being remembered.
func (s *Service) dummy(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyDigest != "" {
		return s.dummyDigest
	}
	digest, err := s.hasher.Hash(context.WithoutCancel(ctx), dummyPassword)
	if err != nil {
		log.Err(err).Msg("hashing timing equaliser")
		return ""
	}
	s.dummyDigest = digest
	return s.dummyDigest
}
