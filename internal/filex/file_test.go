package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDir_RelativeResolvesAgainstCWD(t *testing.T) {
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	defer chdir(t, tmp)()

	got, err := EnsureDir("blobs")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(tmp, "blobs"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0o700), fi.Mode().Perm()&0o700)
	}
}

func TestEnsureDir_Idempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	first, err := EnsureDir(dir)
	require.NoError(t, err)
	second, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := EnsureDir(path)
	require.Error(t, err)
}

func TestWriteNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x", "y", "blob.enc")

	require.NoError(t, WriteNew(path, []byte("data")))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), b)

	err = WriteNew(path, []byte("other"))
	require.ErrorIs(t, err, os.ErrExist)

	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), b, "existing file must not be overwritten")
}
