package config

import (
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
)

type SecurityConfig interface {
	GetBcryptCost() int
	GetHashWorkers() int
	GetEnableRateLimiting() bool
	GetLoginRequestsPerMinute() int
	GetLoginBurst() int
	GetRedisAddr() string
}

type RateLimit struct {
	Enabled           bool   `mapstructure:"enabled"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
	Burst             int    `mapstructure:"burst"`
	RedisAddr         string `mapstructure:"redis_addr"`
}

type Security struct {
	BcryptCost  int       `mapstructure:"bcrypt_cost"`
	HashWorkers int       `mapstructure:"hash_workers"`
	RateLimit   RateLimit `mapstructure:"rate_limit"`
}

var _ SecurityConfig = Security{}

func (s Security) GetBcryptCost() int {
	return s.BcryptCost
}

// GetHashWorkers returns the number of concurrent password hash operations, defaulting to the CPU count.
func (s Security) GetHashWorkers() int {
	if s.HashWorkers <= 0 {
		return runtime.NumCPU()
	}
	return s.HashWorkers
}

func (s Security) GetEnableRateLimiting() bool {
	return s.RateLimit.Enabled
}

func (s Security) GetLoginRequestsPerMinute() int {
	return s.RateLimit.RequestsPerMinute
}

func (s Security) GetLoginBurst() int {
	return s.RateLimit.Burst
}

// GetRedisAddr returns the redis address used to share login throttling between instances.
// Empty means an in-process limiter.
func (s Security) GetRedisAddr() string {
	return s.RateLimit.RedisAddr
}

func (s Security) validate() error {
	if s.BcryptCost < bcrypt.MinCost || s.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if s.RateLimit.Enabled && s.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("security.rate_limit.requests_per_minute must be positive when rate limiting is enabled")
	}
	return nil
}
