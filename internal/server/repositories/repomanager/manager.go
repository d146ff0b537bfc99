// Package repomanager vends dialect-specific repositories and runs the
// embedded goose migrations for the configured database driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/server/config"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Objects(db dbx.DBTX) objects.Repository
	Audit(db dbx.DBTX) auditlog.Repository
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// Open opens the database for driver and returns the matching manager.
// SQLite is limited to one open connection so writers never contend on
// the file lock.
func Open(driver, dsn string) (*sql.DB, RepositoryManager, error) {
	var (
		driverName string
		manager    RepositoryManager
	)

	switch driver {
	case config.DriverPostgres:
		driverName, manager = "pgx", NewPostgresRepositoryManager()
	case config.DriverSQLite:
		driverName, manager = "sqlite", NewSQLiteRepositoryManager()
	default:
		return nil, nil, fmt.Errorf("%w: unknown database driver %q", common.ErrValidation, driver)
	}

	db, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	return db, manager, nil
}
