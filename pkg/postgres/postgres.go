// Package postgres opens pgx-backed sqlx pools and applies schema
// migrations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type poolSettings struct {
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
	maxIdleConns    int
	maxOpenConns    int
}

type Option func(*poolSettings)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(s *poolSettings) {
		s.connMaxIdleTime = d
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *poolSettings) {
		s.connMaxLifetime = d
	}
}

func WithMaxIdleConns(n int) Option {
	return func(s *poolSettings) {
		s.maxIdleConns = n
	}
}

func WithMaxOpenConns(n int) Option {
	return func(s *poolSettings) {
		s.maxOpenConns = n
	}
}

// New connects to the database and configures the connection pool. Options
// override the conservative defaults.
func New(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	settings := poolSettings{
		connMaxIdleTime: 5 * time.Minute,
		connMaxLifetime: 30 * time.Minute,
		maxIdleConns:    5,
		maxOpenConns:    25,
	}
	for _, opt := range opts {
		opt(&settings)
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	db.SetConnMaxIdleTime(settings.connMaxIdleTime)
	db.SetConnMaxLifetime(settings.connMaxLifetime)
	db.SetMaxIdleConns(settings.maxIdleConns)
	db.SetMaxOpenConns(settings.maxOpenConns)

	return db, nil
}

// RunMigrations applies every pending migration from path against dsn. An
// up-to-date schema is not an error.
func RunMigrations(path, dsn string) error {
	const op = "postgres.RunMigrations"

	m, err := migrate.New(path, dsn)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}
