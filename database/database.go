// Package database opens the bun handle used by the repositories and
// applies the embedded goose migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"

	auth "github.com/goliatone/go-tenant-auth"
	"github.com/goliatone/go-tenant-auth/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open connects using the configured driver and verifies the connection
func Open(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		db    *bun.DB
		err   error
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		sqldb, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	case config.DriverSQLite, "":
		sqldb, err = sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return db, nil
}

// Migrate applies every pending migration from the root package
func Migrate(ctx context.Context, db *bun.DB) error {
	goose.SetBaseFS(auth.GetMigrationsFS())
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db.DB, auth.MigrationsDir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

// OpenAndMigrate is Open followed by Migrate
func OpenAndMigrate(ctx context.Context, cfg config.DatabaseConfig) (*bun.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func gooseDialect(db *bun.DB) string {
	if db.Dialect().Name() == dialect.PG {
		return "postgres"
	}
	return "sqlite3"
}
