package config

type BootstrapConfig interface {
	GetBootstrapEnabled() bool
	GetSystemAdminUser() string
	GetSystemAdminPassword() string
	GetSystemAdminEmail() string
	GetDefaultTenantName() string
}

// Bootstrap describes the first-run seed applied to an empty store.
type Bootstrap struct {
	Enabled       bool   `mapstructure:"enabled"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminEmail    string `mapstructure:"admin_email"`
	DefaultTenant string `mapstructure:"default_tenant"`
}

var _ BootstrapConfig = Bootstrap{}

func (b Bootstrap) GetBootstrapEnabled() bool {
	return b.Enabled
}

func (b Bootstrap) GetSystemAdminUser() string {
	return b.AdminUsername
}

func (b Bootstrap) GetSystemAdminPassword() string {
	return b.AdminPassword
}

func (b Bootstrap) GetSystemAdminEmail() string {
	return b.AdminEmail
}

func (b Bootstrap) GetDefaultTenantName() string {
	return b.DefaultTenant
}
