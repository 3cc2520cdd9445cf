package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/metrics"
	"github.com/pkg/errors"
)

const (
	defaultAccessTokenExpiry  = 30 * time.Minute
	defaultRefreshTokenExpiry = 7 * 24 * time.Hour
)

// Manager issues and verifies self-contained access and refresh tokens. It keeps no state
// between calls: there is no revocation list and refresh tokens are not rotated.
type Manager struct {
	signer             Signer
	parser             *jwt.Parser
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func New(signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer: signer,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry <= 0 {
		m.accessTokenExpiry = defaultAccessTokenExpiry
	}
	if m.refreshTokenExpiry <= 0 {
		m.refreshTokenExpiry = defaultRefreshTokenExpiry
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}

	// Claims are checked by Verify against a single clock read, so the library validator is off.
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithoutClaimsValidation(),
	)
	return m
}

// AccessTokenExpiry is the lifetime of tokens returned by IssueAccess.
func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// RefreshTokenExpiry is the lifetime of tokens returned by IssueRefresh.
func (m *Manager) RefreshTokenExpiry() time.Duration {
	return m.refreshTokenExpiry
}

func (m *Manager) IssueAccess(userID string) (string, error) {
	return m.issue(userID, TypeAccess, m.accessTokenExpiry)
}

func (m *Manager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, TypeRefresh, m.refreshTokenExpiry)
}

func (m *Manager) issue(userID string, tokenType Type, expiry time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("Manager.issue: empty subject")
	}

	now := m.nowFunc()
	claims := &Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", errors.Wrapf(err, "Manager.issue %s", tokenType)
	}
	metrics.TokensIssued.WithLabelValues(string(tokenType)).Inc()
	return signed, nil
}

// Verify checks structure, signature, expiry and type of rawToken, in that order. Errors wrap
// ErrTokenMalformed, ErrInvalidSignature, ErrTokenExpired or ErrWrongTokenType.
func (m *Manager) Verify(rawToken string, expected Type) (*Claims, error) {
	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(rawToken, claims, m.signer.GetVerificationKey); err != nil {
		return nil, m.classifyParseError(rawToken, err)
	}

	if !claims.complete() {
		return nil, errors.Wrap(apperrors.ErrTokenMalformed, "missing required claim")
	}

	now := m.nowFunc()
	if now.After(claims.ExpiresAt.Time) {
		return nil, errors.Wrapf(apperrors.ErrTokenExpired, "expired at %s", claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
	}

	if claims.Type != expected {
		return nil, errors.Wrapf(apperrors.ErrWrongTokenType, "got %s, want %s", claims.Type, expected)
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh token stays usable
// until it expires.
func (m *Manager) Refresh(refreshToken string) (string, error) {
	claims, err := m.Verify(refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	return m.IssueAccess(claims.Subject)
}

// classifyParseError maps parser failures onto the token sentinels. A signature segment that does
// not decode is a signature failure when the header and payload are intact.
func (m *Manager) classifyParseError(rawToken string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.Wrap(apperrors.ErrInvalidSignature, err.Error())
	case errors.Is(err, jwt.ErrTokenMalformed):
		if _, _, unverifiedErr := m.parser.ParseUnverified(rawToken, &Claims{}); unverifiedErr == nil {
			return errors.Wrap(apperrors.ErrInvalidSignature, err.Error())
		}
		return errors.Wrap(apperrors.ErrTokenMalformed, err.Error())
	default:
		return errors.Wrap(apperrors.ErrTokenMalformed, err.Error())
	}
}
