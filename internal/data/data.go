// Package data bootstraps the relational store and holds the repositories.
// PostgreSQL (via pgx) backs production; SQLite backs tests and local
// development. Correctness relies on the store's transactions and unique
// constraints, never on application-level locking.
package data

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/jobhive/jobhive/internal/config"
	"github.com/jobhive/jobhive/internal/logging/logger"
)

//go:embed schema.sql
var schemaSQL string

// Data encapsulates the database handle.
type Data struct {
	db     *sql.DB
	driver string
	logger *logger.Logger
}

// New opens the configured database and verifies the connection.
func New(ctx context.Context, cfg *config.Data, log *logger.Logger) (*Data, error) {
	if cfg == nil || cfg.Source == "" {
		return nil, fmt.Errorf("data: connection source is empty")
	}

	driver := cfg.Driver
	if driver == "" || driver == "postgres" {
		driver = "pgx"
	}

	db, err := sql.Open(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("data: failed to open connection: %w", err)
	}

	if cfg.MaxIdleConn > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifeTime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifeTime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("data: failed to ping database: %w", err)
	}

	return &Data{db: db, driver: driver, logger: log}, nil
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB, driver string, log *logger.Logger) *Data {
	return &Data{db: db, driver: driver, logger: log}
}

// DB returns the underlying handle.
func (d *Data) DB() *sql.DB { return d.db }

// Close closes the database connection.
func (d *Data) Close() error { return d.db.Close() }

// Migrate applies the embedded schema. Statements use IF NOT EXISTS so the
// call is safe to repeat on startup.
func (d *Data) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("data: migration failed: %w", err)
		}
	}

	if d.logger != nil {
		d.logger.Info(ctx, "database schema up to date")
	}
	return nil
}

// InTx runs fn inside a transaction, committing on nil and rolling back on
// error or panic.
func (d *Data) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("data: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
