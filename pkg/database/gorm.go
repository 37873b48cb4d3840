package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options configures the Postgres pool. Zero values take the defaults.
type Options struct {
	DSN          string
	Production   bool
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 100
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 10
	}
	if o.MaxLifetime <= 0 {
		o.MaxLifetime = time.Hour
	}
	return o
}

// Open connects and pings. SQL is logged at info level outside
// production; slow queries are always logged.
func Open(opts Options) (*gorm.DB, error) {
	opts = opts.withDefaults()

	level := logger.Info
	if opts.Production {
		level = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  !opts.Production,
		}),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, nil
}

// NewGormDBFromDSN opens a pool with default sizing.
func NewGormDBFromDSN(dsn string, isProd bool) (*gorm.DB, error) {
	return Open(Options{DSN: dsn, Production: isProd})
}
