// Package database owns the SQLite store: opening the pool, applying the
// schema, the per-request connection lifecycle and the user queries.
package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	driverName    = "sqlite3"
	migrationsDir = "migrations"
)

// Open creates the connection pool for the SQLite file at path. The file does
// not have to exist yet; its parent folder is created when missing.
func Open(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		const userOnlyDirPerms = 0o700
		if err := os.MkdirAll(filepath.Dir(path), userOnlyDirPerms); err != nil {
			return nil, fmt.Errorf("failed to create db parent directory: %w", err)
		}
	}

	dsn := path
	if strings.ContainsRune(dsn, '?') {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_busy_timeout=5000&_foreign_keys=on"

	dbConn, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create DB handler: %w", err)
	}
	if err = dbConn.PingContext(ctx); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return dbConn, nil
}

// Migrate brings the schema up to date with the embedded migrations.
func Migrate(ctx context.Context, dbConn *sqlx.DB, logger *zap.Logger) error {
	provider, err := newProvider(dbConn, logger)
	if err != nil {
		return err
	}
	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Reset drops every table the migrations created and recreates them empty.
func Reset(ctx context.Context, dbConn *sqlx.DB, logger *zap.Logger) error {
	provider, err := newProvider(dbConn, logger)
	if err != nil {
		return err
	}
	if _, err = provider.DownTo(ctx, 0); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	if _, err = provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

var migrationName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// CreateMigration writes a blank SQL migration named name into dir.
func CreateMigration(dir, name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	if !migrationName.MatchString(name) {
		return fmt.Errorf("invalid migration name %q: use letters, digits and underscores", name)
	}
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}
	return nil
}

// InitializeDatabase opens the store at path and applies the schema.
func InitializeDatabase(ctx context.Context, path string, logger *zap.Logger) (*sqlx.DB, error) {
	dbConn, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err = Migrate(ctx, dbConn, logger); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", zap.String("db", path))
	return dbConn, nil
}

func newProvider(dbConn *sqlx.DB, logger *zap.Logger) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, dbConn.DB, fsys,
		goose.WithLogger(zap.NewStdLog(logger.Named("goose"))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}
