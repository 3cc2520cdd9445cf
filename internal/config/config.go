package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CASNET"

type Config interface {
	EnvConfig
	TokenConfig
	SecurityConfig
	StoreConfig
	BootstrapConfig
	Validate() error
}

type mainConfig struct {
	EnvVars   `mapstructure:"app"`
	Token     `mapstructure:"token"`
	Security  `mapstructure:"security"`
	Store     `mapstructure:"store"`
	Bootstrap `mapstructure:"bootstrap"`
}

var _ Config = (*mainConfig)(nil)

// New loads configuration from defaults, an optional YAML file and CASNET_* environment variables,
// in that order of precedence, and validates the result.
func New(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("casnet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/casnet/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("[config New] failed to read config file: %w", err)
		}
	}

	var cfg mainConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("[config New] failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("[config New] invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Casnet Auth")
	v.SetDefault("app.env", "DEV")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.shutdown_timeout", "5s")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("token.secret", DevelopmentSecret)
	v.SetDefault("token.algorithm", "HS256")
	v.SetDefault("token.access_ttl_minutes", 30)
	v.SetDefault("token.refresh_ttl_minutes", 7*24*60)

	v.SetDefault("security.bcrypt_cost", 12)
	v.SetDefault("security.hash_workers", 0)
	v.SetDefault("security.rate_limit.enabled", false)
	v.SetDefault("security.rate_limit.requests_per_minute", 10)
	v.SetDefault("security.rate_limit.burst", 5)
	v.SetDefault("security.rate_limit.redis_addr", "")

	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_open_conns", 10)
	v.SetDefault("store.migrate_on_start", true)

	v.SetDefault("bootstrap.enabled", true)
	v.SetDefault("bootstrap.admin_username", "admin")
	v.SetDefault("bootstrap.admin_password", "changeme")
	v.SetDefault("bootstrap.admin_email", "admin@casnet.local")
	v.SetDefault("bootstrap.default_tenant", "Default")
}

// Validate checks values that would otherwise fail at first use.
func (c *mainConfig) Validate() error {
	if err := c.Token.validate(c.GetEnv()); err != nil {
		return err
	}
	if err := c.Security.validate(); err != nil {
		return err
	}
	return c.Store.validate()
}
