package access_test

import (
	"testing"

	"github.com/jrsteele09/casnet-auth/access"
	apperrors "github.com/jrsteele09/casnet-auth/internal/errors"
	"github.com/jrsteele09/casnet-auth/principal"
	"github.com/stretchr/testify/require"
)

func member(tenantIDs ...string) *principal.Principal {
	return &principal.Principal{UserID: "u1", Username: "alice", TenantIDs: principal.NewTenantSet(tenantIDs...)}
}

func superuser() *principal.Principal {
	return &principal.Principal{UserID: "root", Username: "admin", IsSuperuser: true}
}

func TestGuard_AuthorizeSingle(t *testing.T) {
	guard := access.NewGuard()

	tests := []struct {
		name      string
		principal *principal.Principal
		tenantID  string
		wantErr   error
	}{
		{"member allowed", member("A"), "A", nil},
		{"non member forbidden", member("A"), "B", apperrors.ErrForbidden},
		{"no memberships forbidden", member(), "A", apperrors.ErrForbidden},
		{"superuser own", superuser(), "A", nil},
		{"superuser other", superuser(), "B", nil},
		{"nil principal", nil, "A", apperrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.AuthorizeSingle(tt.principal, tt.tenantID)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGuard_EffectiveScope(t *testing.T) {
	guard := access.NewGuard()

	t.Run("requested tenant narrows scope", func(t *testing.T) {
		scope, err := guard.EffectiveScope(member("A", "B"), "A")
		require.NoError(t, err)
		require.False(t, scope.All())
		require.Equal(t, []string{"A"}, scope.TenantIDs())
	})

	t.Run("requested foreign tenant forbidden", func(t *testing.T) {
		_, err := guard.EffectiveScope(member("A"), "B")
		require.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("member without request gets own tenants", func(t *testing.T) {
		scope, err := guard.EffectiveScope(member("B", "A"), "")
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B"}, scope.TenantIDs())
		require.True(t, scope.Contains("A"))
		require.False(t, scope.Contains("C"))
	})

	t.Run("superuser without request gets sentinel", func(t *testing.T) {
		scope, err := guard.EffectiveScope(superuser(), "")
		require.NoError(t, err)
		require.True(t, scope.All())
		require.Nil(t, scope.TenantIDs())
		require.True(t, scope.Contains("anything"))
	})

	t.Run("superuser requesting a tenant gets that tenant", func(t *testing.T) {
		scope, err := guard.EffectiveScope(superuser(), "Z")
		require.NoError(t, err)
		require.False(t, scope.All())
		require.Equal(t, []string{"Z"}, scope.TenantIDs())
	})

	t.Run("zero scope allows nothing", func(t *testing.T) {
		var scope access.Scope
		require.False(t, scope.Contains("A"))
		require.Empty(t, scope.TenantIDs())
	})
}
