package repotest

import (
	"io/fs"
	"testing"

	"github.com/dmitrijs2005/sealvault/internal/server/migrations"
	"github.com/stretchr/testify/require"
)

func mustSub(t testing.TB, dir string) fs.FS {
	t.Helper()
	sub, err := fs.Sub(migrations.FS, dir)
	require.NoError(t, err)
	return sub
}
