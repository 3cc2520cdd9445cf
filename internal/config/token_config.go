package config

import (
	"errors"
	"fmt"
	"time"
)

// DevelopmentSecret is the signing secret used when none is configured. It is rejected outside DEV.
const DevelopmentSecret = "casnet-development-secret-change-me"

type TokenConfig interface {
	GetSecret() string
	GetAlgorithm() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Token struct {
	Secret            string `mapstructure:"secret"`
	Algorithm         string `mapstructure:"algorithm"`
	AccessTTLMinutes  int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLMinutes int    `mapstructure:"refresh_ttl_minutes"`
}

var _ TokenConfig = Token{}

func (t Token) GetSecret() string {
	return t.Secret
}

func (t Token) GetAlgorithm() string {
	return t.Algorithm
}

func (t Token) GetAccessTokenExpiry() time.Duration {
	return time.Duration(t.AccessTTLMinutes) * time.Minute
}

func (t Token) GetRefreshTokenExpiry() time.Duration {
	return time.Duration(t.RefreshTTLMinutes) * time.Minute
}

func (t Token) validate(env string) error {
	if t.Secret == "" {
		return errors.New("token.secret is required")
	}
	if env != EnvDevelopment && t.Secret == DevelopmentSecret {
		return fmt.Errorf("token.secret must be set explicitly in %s", env)
	}
	switch t.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("token.algorithm %q is not supported", t.Algorithm)
	}
	if t.AccessTTLMinutes <= 0 {
		return errors.New("token.access_ttl_minutes must be positive")
	}
	if t.RefreshTTLMinutes <= 0 {
		return errors.New("token.refresh_ttl_minutes must be positive")
	}
	return nil
}
