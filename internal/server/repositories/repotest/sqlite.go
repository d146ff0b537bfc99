// Package repotest opens migrated throwaway databases for repository and
// service tests.
package repotest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/sealvault/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// SQLite returns a migrated SQLite database in a temp dir, closed on cleanup.
func SQLite(t testing.TB) *sql.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, mustSub(t, migrations.SQLiteDir))
	require.NoError(t, err)
	_, err = provider.Up(t.Context())
	require.NoError(t, err)

	return db
}
