package objects

import "github.com/dmitrijs2005/sealvault/internal/dbx"

// NewSQLiteRepository returns a Repository for SQLite (modernc).
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.SQLite)
}
