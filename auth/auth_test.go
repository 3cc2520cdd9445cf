package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/casnet-auth/auth"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/jrsteele09/casnet-auth/store/memory"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/token"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	secretStr        = "test-secret"
	testUserPassword = "Password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	store    *memory.Store
	hasher   *password.BcryptHasher
	tokens   *token.Manager
	now      time.Time
	resolver *auth.Resolver
	service  *auth.Service
	user     *users.User
	tenant   *tenants.Tenant
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	f := &testFixture{store: memory.New(), now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}

	hasher, err := password.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	f.hasher = hasher

	signer, err := token.NewHMACSigner(secretStr, "HS256")
	require.NoError(t, err)
	f.tokens = token.New(signer,
		token.WithTokenExpiry(30*time.Minute, 24*time.Hour),
		token.WithNowFunc(func() time.Time { return f.now }),
	)

	digest, err := hasher.Hash(ctx, testUserPassword)
	require.NoError(t, err)
	f.user = &users.User{Username: "alice", Email: "alice@example.com", PasswordHash: digest, IsActive: true}
	require.NoError(t, f.store.Users().Create(ctx, f.user))

	f.tenant = &tenants.Tenant{Name: "Acme"}
	require.NoError(t, f.store.Tenants().Create(ctx, f.tenant))
	require.NoError(t, f.store.Memberships().AddMember(ctx, f.tenant.ID, f.user.ID))

	principals := principal.NewStore(f.store.Users(), f.store.Memberships())
	f.resolver = auth.NewResolver(f.tokens, principals)
	f.service, err = auth.NewService(f.store.Users(), hasher, f.tokens, principals)
	require.NoError(t, err)
	return f
}

type failingLoader struct{ err error }

func (l failingLoader) Load(context.Context, string) (*principal.Principal, error) {
	return nil, l.err
}

func TestResolver_Resolve(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	accessToken, err := f.tokens.IssueAccess(f.user.ID)
	require.NoError(t, err)
	refreshToken, err := f.tokens.IssueRefresh(f.user.ID)
	require.NoError(t, err)
	strangerToken, err := f.tokens.IssueAccess("no-such-user")
	require.NoError(t, err)

	t.Run("valid bearer", func(t *testing.T) {
		p, err := f.resolver.Resolve(ctx, "Bearer "+accessToken)
		require.NoError(t, err)
		require.Equal(t, f.user.ID, p.UserID)
		require.Equal(t, "alice", p.Username)
		require.True(t, p.TenantIDs.Contains(f.tenant.ID))
	})

	rejected := map[string]string{
		"empty header":       "",
		"no scheme":          accessToken,
		"lowercase scheme":   "bearer " + accessToken,
		"basic scheme":       "Basic " + accessToken,
		"empty token":        "Bearer ",
		"double space":       "Bearer  " + accessToken,
		"trailing garbage":   "Bearer " + accessToken + " extra",
		"garbage token":      "Bearer abc.def.ghi",
		"refresh as access":  "Bearer " + refreshToken,
		"unknown subject":    "Bearer " + strangerToken,
		"tampered signature": "Bearer " + accessToken[:len(accessToken)-3] + "AAA",
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := f.resolver.Resolve(ctx, header)
			require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		saved := f.now
		t.Cleanup(func() { f.now = saved })
		f.now = f.now.Add(31 * time.Minute)

		_, err := f.resolver.Resolve(ctx, "Bearer "+accessToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("disabled user", func(t *testing.T) {
		require.NoError(t, f.store.Users().SetActive(ctx, f.user.ID, false))
		t.Cleanup(func() { _ = f.store.Users().SetActive(ctx, f.user.ID, true) })

		_, err := f.resolver.Resolve(ctx, "Bearer "+accessToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("storage failure is not masked", func(t *testing.T) {
		boom := errors.New("db down")
		resolver := auth.NewResolver(f.tokens, failingLoader{err: boom})
		_, err := resolver.Resolve(ctx, "Bearer "+accessToken)
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

func TestService_Login(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		pair, err := f.service.Login(ctx, "alice", testUserPassword)
		require.NoError(t, err)
		require.Equal(t, "bearer", pair.TokenType)
		require.Equal(t, 1800, pair.ExpiresIn)

		claims, err := f.tokens.Verify(pair.AccessToken, token.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, f.user.ID, claims.UserID())

		claims, err = f.tokens.Verify(pair.RefreshToken, token.TypeRefresh)
		require.NoError(t, err)
		require.Equal(t, f.user.ID, claims.UserID())
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := f.service.Login(ctx, "mallory", testUserPassword)
		_, errWrong := f.service.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, errUnknown, apperrors.ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, apperrors.ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("disabled user", func(t *testing.T) {
		require.NoError(t, f.store.Users().SetActive(ctx, f.user.ID, false))
		t.Cleanup(func() { _ = f.store.Users().SetActive(ctx, f.user.ID, true) })

		_, err := f.service.Login(ctx, "alice", testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestService_Refresh(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	pair, err := f.service.Login(ctx, "alice", testUserPassword)
	require.NoError(t, err)

	t.Run("refresh issues access token and keeps refresh token usable", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
			require.NoError(t, err)
			require.Empty(t, refreshed.RefreshToken)
			_, err = f.resolver.Resolve(ctx, "Bearer "+refreshed.AccessToken)
			require.NoError(t, err)
		}
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("disabled user cannot refresh", func(t *testing.T) {
		require.NoError(t, f.store.Users().SetActive(ctx, f.user.ID, false))
		t.Cleanup(func() { _ = f.store.Users().SetActive(ctx, f.user.ID, true) })

		_, err := f.service.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		saved := f.now
		t.Cleanup(func() { f.now = saved })
		f.now = f.now.Add(25 * time.Hour)

		_, err := f.service.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}

// recordingHasher remembers the digests it is asked to verify against and can fail its first hashes.
type recordingHasher struct {
	password.Hasher
	mu              sync.Mutex
	failHash        int
	verifiedAgainst []string
}

func (h *recordingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.mu.Lock()
	if h.failHash > 0 {
		h.failHash--
		h.mu.Unlock()
		return "", errors.New("hasher unavailable")
	}
	h.mu.Unlock()
	return h.Hasher.Hash(ctx, plaintext)
}

func (h *recordingHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	h.mu.Lock()
	h.verifiedAgainst = append(h.verifiedAgainst, digest)
	h.mu.Unlock()
	return h.Hasher.Verify(ctx, plaintext, digest)
}

func TestService_UnknownUserDigest(t *testing.T) {
	newService := func(t *testing.T, hasher password.Hasher) *auth.Service {
		t.Helper()
		f := setupTestFixture(t)
		principals := principal.NewStore(f.store.Users(), f.store.Memberships())
		service, err := auth.NewService(f.store.Users(), hasher, f.tokens, principals)
		require.NoError(t, err)
		return service
	}

	t.Run("cancelled first request still builds the digest", func(t *testing.T) {
		base, err := password.NewBcryptHasher(bcrypt.MinCost)
		require.NoError(t, err)
		hasher := &recordingHasher{Hasher: base}
		service := newService(t, hasher)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = service.Login(cancelled, "mallory", testUserPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		for i := 0; i < 3; i++ {
			_, err = service.Login(context.Background(), "mallory", testUserPassword)
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		}

		require.Len(t, hasher.verifiedAgainst, 4)
		for _, digest := range hasher.verifiedAgainst {
			require.NotEmpty(t, digest)
		}
	})

	t.Run("failed build is retried", func(t *testing.T) {
		base, err := password.NewBcryptHasher(bcrypt.MinCost)
		require.NoError(t, err)
		hasher := &recordingHasher{Hasher: base, failHash: 1}
		service := newService(t, hasher)

		for i := 0; i < 2; i++ {
			_, err = service.Login(context.Background(), "mallory", testUserPassword)
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		}

		require.Equal(t, "", hasher.verifiedAgainst[0])
		require.NotEmpty(t, hasher.verifiedAgainst[1])
	})
}

func TestNewService_RequiresDependencies(t *testing.T) {
	f := setupTestFixture(t)
	principals := principal.NewStore(f.store.Users(), f.store.Memberships())

	_, err := auth.NewService(nil, f.hasher, f.tokens, principals)
	require.Error(t, err)
	_, err = auth.NewService(f.store.Users(), nil, f.tokens, principals)
	require.Error(t, err)
	_, err = auth.NewService(f.store.Users(), f.hasher, nil, principals)
	require.Error(t, err)
	_, err = auth.NewService(f.store.Users(), f.hasher, f.tokens, nil)
	require.Error(t, err)
}
