package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/server/migrations"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. Used for single
// node deployments and local development.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Objects(db dbx.DBTX) objects.Repository {
	return objects.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Audit(db dbx.DBTX) auditlog.Repository {
	return auditlog.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, migrations.SQLiteDir)
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}
