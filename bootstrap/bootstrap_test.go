package bootstrap_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/casnet-auth/bootstrap"
	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/store/memory"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newHasher(t *testing.T) *password.BcryptHasher {
	t.Helper()
	h, err := password.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	hasher := newHasher(t)

	seeded, err := bootstrap.Seed(ctx, st, hasher, bootstrap.Options{AdminPassword: "changeme"})
	require.NoError(t, err)
	require.True(t, seeded)

	admin, err := st.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.True(t, admin.IsSuperuser)
	require.True(t, admin.IsActive)
	require.Equal(t, "admin@casnet.local", admin.Email)
	require.True(t, hasher.Verify(ctx, "changeme", admin.PasswordHash))

	tenantList, err := st.Tenants().List(ctx)
	require.NoError(t, err)
	require.Len(t, tenantList, 1)
	require.Equal(t, "Default", tenantList[0].Name)

	ids, err := st.Memberships().TenantIDs(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, []string{tenantList[0].ID}, ids)

	t.Run("second run is a no-op", func(t *testing.T) {
		seeded, err := bootstrap.Seed(ctx, st, hasher, bootstrap.Options{AdminPassword: "other"})
		require.NoError(t, err)
		require.False(t, seeded)

		count, err := st.Tenants().Count(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})
}

func TestSeed_SkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Users().Create(ctx, &users.User{Username: "someone", Email: "someone@example.com"}))

	seeded, err := bootstrap.Seed(ctx, st, newHasher(t), bootstrap.Options{})
	require.NoError(t, err)
	require.False(t, seeded)

	_, err = st.Users().GetByUsername(ctx, "admin")
	require.Error(t, err)
}

func TestSeed_GeneratesPasswordWhenEmpty(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	hasher := newHasher(t)

	seeded, err := bootstrap.Seed(ctx, st, hasher, bootstrap.Options{AdminUsername: "root", DefaultTenantName: "Ops"})
	require.NoError(t, err)
	require.True(t, seeded)

	admin, err := st.Users().GetByUsername(ctx, "root")
	require.NoError(t, err)
	require.False(t, hasher.Verify(ctx, "", admin.PasswordHash))
	require.NotEmpty(t, admin.PasswordHash)
}

type failingHasher struct {
	password.Hasher
}

func (failingHasher) Hash(context.Context, string) (string, error) {
	return "", errors.New("hash interrupted")
}

func TestSeed_RetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	seeded, err := bootstrap.Seed(ctx, st, failingHasher{}, bootstrap.Options{AdminPassword: "changeme"})
	require.Error(t, err)
	require.False(t, seeded)

	count, err := st.Tenants().Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count, "a failed seed must not leave a tenant behind")

	seeded, err = bootstrap.Seed(ctx, st, newHasher(t), bootstrap.Options{AdminPassword: "changeme"})
	require.NoError(t, err)
	require.True(t, seeded)

	_, err = st.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
}

func TestSeed_ReusesExistingDefaultTenant(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	leftover := &tenants.Tenant{Name: "Default"}
	require.NoError(t, st.Tenants().Create(ctx, leftover))

	seeded, err := bootstrap.Seed(ctx, st, newHasher(t), bootstrap.Options{AdminPassword: "changeme"})
	require.NoError(t, err)
	require.True(t, seeded)

	count, err := st.Tenants().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	admin, err := st.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	ids, err := st.Memberships().TenantIDs(ctx, admin.ID)
	require.NoError(t, err)
	require.Equal(t, []string{leftover.ID}, ids)
}
