package memory_test

import (
	"context"
	"sync"
	"testing"

	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/store/memory"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	store  *memory.Store
	user   *users.User
	tenant *tenants.Tenant
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	user := &users.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", IsActive: true}
	require.NoError(t, s.Users().Create(ctx, user))
	require.NotEmpty(t, user.ID)

	tenant := &tenants.Tenant{Name: "Acme"}
	require.NoError(t, s.Tenants().Create(ctx, tenant))
	require.NotEmpty(t, tenant.ID)

	return &testFixture{store: s, user: user, tenant: tenant}
}

func TestUsers(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	repo := f.store.Users()

	t.Run("unique username and email", func(t *testing.T) {
		err := repo.Create(ctx, &users.User{Username: "alice", Email: "other@example.com"})
		require.ErrorIs(t, err, apperrors.ErrConflict)
		err = repo.Create(ctx, &users.User{Username: "other", Email: "alice@example.com"})
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("lookups", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, f.user.ID)
		require.NoError(t, err)
		require.Equal(t, "alice", byID.Username)

		byName, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, f.user.ID, byName.ID)

		_, err = repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		_, err = repo.GetByUsername(ctx, "missing")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("returned users are copies", func(t *testing.T) {
		u, err := repo.GetByID(ctx, f.user.ID)
		require.NoError(t, err)
		u.IsSuperuser = true

		again, err := repo.GetByID(ctx, f.user.ID)
		require.NoError(t, err)
		require.False(t, again.IsSuperuser)
	})

	t.Run("update reindexes username", func(t *testing.T) {
		u, err := repo.GetByID(ctx, f.user.ID)
		require.NoError(t, err)
		u.Username = "alice2"
		require.NoError(t, repo.Update(ctx, u))

		_, err = repo.GetByUsername(ctx, "alice")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
		_, err = repo.GetByUsername(ctx, "alice2")
		require.NoError(t, err)
	})

	t.Run("soft disable", func(t *testing.T) {
		require.NoError(t, repo.SetActive(ctx, f.user.ID, false))
		u, err := repo.GetByID(ctx, f.user.ID)
		require.NoError(t, err)
		require.False(t, u.IsActive)
		require.ErrorIs(t, repo.SetActive(ctx, "missing", false), apperrors.ErrUserNotFound)
	})

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMemberships_Idempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	registry := f.store.Memberships()

	require.NoError(t, registry.AddMember(ctx, f.tenant.ID, f.user.ID))
	require.NoError(t, registry.AddMember(ctx, f.tenant.ID, f.user.ID))

	ids, err := registry.TenantIDs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.tenant.ID}, ids)

	require.NoError(t, registry.RemoveMember(ctx, f.tenant.ID, f.user.ID))
	require.NoError(t, registry.RemoveMember(ctx, f.tenant.ID, f.user.ID))
	require.NoError(t, registry.RemoveMember(ctx, "missing", "missing"))

	ids, err = registry.TenantIDs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestMemberships_ConcurrentAdd(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	registry := f.store.Memberships()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, registry.AddMember(ctx, f.tenant.ID, f.user.ID))
		}()
	}
	wg.Wait()

	ids, err := registry.TenantIDs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
}

func TestMemberships_ReferencesLiveRows(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	registry := f.store.Memberships()

	require.ErrorIs(t, registry.AddMember(ctx, "missing", f.user.ID), apperrors.ErrTenantNotFound)
	require.ErrorIs(t, registry.AddMember(ctx, f.tenant.ID, "missing"), apperrors.ErrUserNotFound)
}

func TestTenants_DeleteCascades(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	other := &tenants.Tenant{Name: "Globex"}
	require.NoError(t, f.store.Tenants().Create(ctx, other))
	require.NoError(t, f.store.Memberships().AddMember(ctx, f.tenant.ID, f.user.ID))
	require.NoError(t, f.store.Memberships().AddMember(ctx, other.ID, f.user.ID))

	require.NoError(t, f.store.Tenants().Delete(ctx, f.tenant.ID))

	_, err := f.store.Tenants().Get(ctx, f.tenant.ID)
	require.ErrorIs(t, err, apperrors.ErrTenantNotFound)
	require.ErrorIs(t, f.store.Tenants().Delete(ctx, f.tenant.ID), apperrors.ErrTenantNotFound)

	ids, err := f.store.Memberships().TenantIDs(ctx, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{other.ID}, ids)

	// the name is free again
	require.NoError(t, f.store.Tenants().Create(ctx, &tenants.Tenant{Name: "Acme"}))
}

func TestTenants_Lists(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	other := &tenants.Tenant{Name: "Globex"}
	require.NoError(t, f.store.Tenants().Create(ctx, other))
	require.ErrorIs(t, f.store.Tenants().Create(ctx, &tenants.Tenant{Name: "Globex"}), apperrors.ErrConflict)

	all, err := f.store.Tenants().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Acme", all[0].Name)

	some, err := f.store.Tenants().ListByIDs(ctx, []string{other.ID, other.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	require.Equal(t, "Globex", some[0].Name)

	require.NoError(t, f.store.Memberships().AddMember(ctx, other.ID, f.user.ID))
	members, err := f.store.Users().ListByTenants(ctx, []string{other.ID, f.tenant.ID})
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, f.user.ID, members[0].ID)
}
