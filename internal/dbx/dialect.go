package dbx

import (
	"fmt"
	"strings"
)

// Dialect identifies the SQL flavour a repository talks to.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Rebind rewrites $N placeholders for the dialect. Queries are written in
// Postgres style; for SQLite each $N becomes ?, so every placeholder must
// appear once and in ascending order.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))

	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}

	return b.String()
}
