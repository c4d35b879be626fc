// Package migration applies the embedded SQL schema with golang-migrate.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"financeapi/internal/logger"
)

//go:embed migrations/*.sql
var files embed.FS

// Migrator owns a dedicated connection; Close releases it.
type Migrator struct {
	m    *migrate.Migrate
	host string
	log  *slog.Logger
}

// New opens dsn and prepares the embedded migrations against it.
func New(dsn, dbHost string) (*Migrator, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	src, err := iofs.New(files, "migrations")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	drv, err := pgx.WithInstance(db, &pgx.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", drv)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return &Migrator{
		m:    m,
		host: dbHost,
		log:  logger.L.With("component", "database", "db_host", dbHost),
	}, nil
}

// Up applies every pending migration. An up-to-date schema is not an error.
func (mg *Migrator) Up(ctx context.Context) error {
	return mg.run(ctx, "up", mg.m.Up)
}

// Down rolls back the most recent migration.
func (mg *Migrator) Down(ctx context.Context) error {
	return mg.run(ctx, "down", func() error { return mg.m.Steps(-1) })
}

// Version reports the applied version. ok is false on an empty database.
func (mg *Migrator) Version() (version uint, dirty bool, ok bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) run(ctx context.Context, direction string, fn func() error) error {
	start := time.Now()
	mg.log.Info("db migration", "event", "db_migration_start", "direction", direction, "status", "in_progress")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			mg.m.GracefulStop <- true
		case <-done:
		}
	}()

	err := fn()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("schema already current, skipping migration",
			"event", "db_migration_skip", "direction", direction, "status", "success",
			"duration_ms", time.Since(start).Milliseconds())
		return nil
	case err != nil:
		mg.log.Error("db migration failed",
			"event", "db_migration_failed", "direction", direction, "status", "error",
			"error_message", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, _, _, _ := mg.Version()
	mg.log.Info("db migration",
		"event", "db_migration_success", "direction", direction, "status", "success",
		"version", version, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// EnsureMigrated brings the schema at dsn up to date.
func EnsureMigrated(ctx context.Context, dsn, dbHost string) error {
	mg, err := New(dsn, dbHost)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := mg.Close(); cerr != nil {
			mg.log.Warn("close migrator", "error", cerr)
		}
	}()
	return mg.Up(ctx)
}
