package objects

import "github.com/dmitrijs2005/sealvault/internal/dbx"

// NewPostgresRepository returns a Repository for PostgreSQL (pgx).
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.Postgres)
}
