package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/joddb/shopfloor/internal/log"
)

//go:embed sql/*.sql
var schemaFiles embed.FS

// MigrationsTable is the table where the shop-floor schema version is tracked.
const MigrationsTable = "shopfloor_schema_migrations"

// SchemaVersion is the state of the database schema.
type SchemaVersion struct {
	Version uint
	Dirty   bool
}

// Migrator keeps the shop-floor database schema up to date.
type Migrator struct {
	db     *sql.DB
	logger log.Logger
}

// NewMigrator returns a migrator for the shop-floor schema.
func NewMigrator(db *sql.DB, logger log.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if logger == nil {
		logger = log.Noop
	}

	return &Migrator{db: db, logger: logger.WithValues(log.Kv{"svc": "storage.Migrator"})}, nil
}

// Up migrates the schema to the latest version.
func (m *Migrator) Up(ctx context.Context) error {
	return m.with(ctx, func(inst *migrate.Migrate) error {
		if err := inst.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not migrate schema up: %w", err)
		}
		m.logger.Debugf("Schema is up to date")
		return nil
	})
}

// Down drops all the shop-floor tables.
func (m *Migrator) Down(ctx context.Context) error {
	return m.with(ctx, func(inst *migrate.Migrate) error {
		if err := inst.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("could not migrate schema down: %w", err)
		}
		m.logger.Debugf("Schema dropped")
		return nil
	})
}

// Version returns the current schema version, zero when no migration has been applied.
func (m *Migrator) Version(ctx context.Context) (SchemaVersion, error) {
	var sv SchemaVersion
	err := m.with(ctx, func(inst *migrate.Migrate) error {
		v, dirty, err := inst.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return nil
			}
			return fmt.Errorf("could not get schema version: %w", err)
		}
		sv = SchemaVersion{Version: v, Dirty: dirty}
		return nil
	})
	return sv, err
}

func (m *Migrator) with(ctx context.Context, f func(inst *migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(schemaFiles, "sql")
	if err != nil {
		return fmt.Errorf("could not load embedded schema: %w", err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			m.logger.Errorf("could not close schema source: %s", err)
		}
	}()

	inst, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	return f(inst)
}
