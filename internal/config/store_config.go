package config

import (
	"errors"
	"fmt"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetDatabaseURL() string
	GetMaxOpenConns() int
	GetMigrateOnStart() bool
}

type Store struct {
	Driver         string `mapstructure:"driver"`
	DSN            string `mapstructure:"dsn"`
	MaxOpenConns   int    `mapstructure:"max_open_conns"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreDriver() string {
	return s.Driver
}

func (s Store) GetDatabaseURL() string {
	return s.DSN
}

func (s Store) GetMaxOpenConns() int {
	return s.MaxOpenConns
}

func (s Store) GetMigrateOnStart() bool {
	return s.MigrateOnStart
}

func (s Store) validate() error {
	switch s.Driver {
	case StoreDriverMemory:
		return nil
	case StoreDriverPostgres:
		if s.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
		return nil
	default:
		return fmt.Errorf("store.driver %q is not supported", s.Driver)
	}
}
