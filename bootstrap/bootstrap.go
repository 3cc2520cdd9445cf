// Package bootstrap seeds an empty store with a default tenant and superuser.
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/casnet-auth/password"
	"github.com/jrsteele09/casnet-auth/store"
	"github.com/jrsteele09/casnet-auth/tenants"
	"github.com/jrsteele09/casnet-auth/users"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@casnet.local"
	DefaultTenantName    = "Default"
)

// Options describe the seeded records. An empty AdminPassword generates a random one, which is logged once.
type Options struct {
	AdminUsername     string
	AdminPassword     string
	AdminEmail        string
	DefaultTenantName string
}

func (o *Options) applyDefaults() {
	if o.AdminUsername == "" {
		o.AdminUsername = DefaultAdminUsername
	}
	if o.AdminEmail == "" {
		o.AdminEmail = DefaultAdminEmail
	}
	if o.DefaultTenantName == "" {
		o.DefaultTenantName = DefaultTenantName
	}
}

// Seed creates the default tenant, the admin superuser and the membership between them, but only
// when the store has no users. It reports whether anything was created, so repeated startups are no-ops.
func Seed(ctx context.Context, st store.Store, hasher password.Hasher, opts Options) (bool, error) {
	count, err := st.Users().Count(ctx)
	if err != nil {
		return false, fmt.Errorf("[bootstrap Seed] counting users: %w", err)
	}
	if count > 0 {
		log.Debug().Int("users", count).Msg("store already initialised, skipping seed")
		return false, nil
	}

	opts.applyDefaults()
	generated := opts.AdminPassword == ""
	if generated {
		if opts.AdminPassword, err = randomPassword(); err != nil {
			return false, fmt.Errorf("[bootstrap Seed] %w", err)
		}
	}

	// Hashing is the step most likely to fail, so it runs before anything is written.
	digest, err := hasher.Hash(ctx, opts.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("[bootstrap Seed] failed to hash password: %w", err)
	}

	tenant, err := defaultTenant(ctx, st.Tenants(), opts.DefaultTenantName)
	if err != nil {
		return false, fmt.Errorf("[bootstrap Seed] failed to create default tenant: %w", err)
	}

	admin := &users.User{
		Username:     opts.AdminUsername,
		Email:        opts.AdminEmail,
		PasswordHash: digest,
		IsActive:     true,
		IsSuperuser:  true,
	}
	admin.Normalise()
	if err := st.Users().Create(ctx, admin); err != nil {
		return false, fmt.Errorf("[bootstrap Seed] failed to create admin: %w", err)
	}

	if err := st.Memberships().AddMember(ctx, tenant.ID, admin.ID); err != nil {
		return false, fmt.Errorf("[bootstrap Seed] failed to add admin to tenant: %w", err)
	}

	event := log.Info().
		Str("tenant_id", tenant.ID).
		Str("tenant", tenant.Name).
		Str("admin_id", admin.ID).
		Str("admin", admin.Username)
	if generated {
		event = event.Str("generated_password", opts.AdminPassword)
	}
	event.Msg("seeded default tenant and superuser")
	return true, nil
}

// defaultTenant reuses a tenant left behind by an interrupted seed, otherwise creates it.
func defaultTenant(ctx context.Context, repo tenants.Repo, name string) (*tenants.Tenant, error) {
	tenant := &tenants.Tenant{Name: name, Description: "Created on first start"}
	tenant.Normalise()

	existing, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Name == tenant.Name {
			log.Info().Str("tenant_id", t.ID).Str("tenant", t.Name).Msg("reusing existing default tenant")
			return t, nil
		}
	}

	if err := repo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func randomPassword() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
