package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver     string
	Postgres   PostgresConfig
	SQLitePath string
}

// Open connects with the configured driver and migrates the schema.
func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	var gdb *gorm.DB
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		svc, err := NewPostgresService(cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		gdb = svc.DB()
	case DriverSQLite:
		svc, err := NewSQLiteService(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		gdb = svc.DB()
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return gdb, nil
}
