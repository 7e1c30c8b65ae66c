// Package storage holds the key-value backends the screen remembers the last
// selected city in.
package storage

import (
	"fmt"
	"log/slog"

	"weatherscreen/manager"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Store interface {
	manager.Store
	Close() error
}

type Config struct {
	Driver    string
	Path      string
	RedisAddr string
	RedisDB   int
	KeyPrefix string
	Logger    *slog.Logger
}

func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFile(cfg.Path), nil
	case DriverSQLite:
		return NewSQLite(cfg.Path, cfg.Logger)
	case DriverRedis:
		return NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
