// Package database opens the shared store and keeps its schema current
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tasklist/config"
	"tasklist/internal/apperr"
)

// Options controls how Open connects
type Options struct {
	Driver         string // "postgres" or "sqlite"
	DSN            string
	ConnectTimeout time.Duration
	LogLevel       logger.LogLevel
}

// OptionsFromConfig maps the application config to connection options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := Options{
		Driver:         cfg.DBDriver,
		ConnectTimeout: cfg.StoreTimeout,
		LogLevel:       logger.Warn,
	}
	if cfg.DBDriver == "sqlite" {
		opts.DSN = SQLiteDSN(cfg.SQLitePath)
	} else {
		opts.DSN = cfg.PostgresDSN()
	}
	return opts
}

// SQLiteDSN enables foreign keys on a SQLite path (":memory:" included)
func SQLiteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open opens a GORM connection and verifies it with a bounded ping.
// Connection failures are reported as apperr.ErrConnectivity.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", opts.Driver)
	}

	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", apperr.ErrConnectivity, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if opts.Driver == "sqlite" {
		// single writer; also keeps ":memory:" databases on one connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("%w: %v", apperr.ErrConnectivity, err)
	}

	return db, nil
}

// Close gracefully closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}
