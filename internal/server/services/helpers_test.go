package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/cryptox"
	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/config"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/sealvault/internal/server/storage"
	"github.com/stretchr/testify/require"
)

const (
	alice = "u1"
	bob   = "u2"
	carol = "u3"
)

type fixture struct {
	svc   *ObjectService
	db    *sql.DB
	rm    repomanager.RepositoryManager
	blobs *storage.FSStorage
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWith(t, nil, opts...)
}

// newFixtureWith builds the service over a migrated SQLite database and a
// temp blob dir. wrap, when set, may decorate the repository manager.
func newFixtureWith(t *testing.T, wrap func(repomanager.RepositoryManager) repomanager.RepositoryManager, opts ...Option) *fixture {
	t.Helper()

	db := repotest.SQLite(t)
	var rm repomanager.RepositoryManager = repomanager.NewSQLiteRepositoryManager()

	ctx := context.Background()
	users := rm.Users(db)
	for _, u := range []models.User{
		{ID: alice, UserName: "alice", Email: "alice@example.com"},
		{ID: bob, UserName: "bob", Email: "bob@example.com"},
		{ID: carol, UserName: "carol", Email: "carol@example.com"},
	} {
		_, err := users.Create(ctx, &u)
		require.NoError(t, err)
	}

	if wrap != nil {
		rm = wrap(rm)
	}

	blobs, err := storage.NewFSStorage(t.TempDir())
	require.NoError(t, err)

	codec, err := cryptox.NewCodec(common.GenerateRandByteArray(common.KeySize))
	require.NoError(t, err)

	cfg := &config.Config{CryptoWorkers: 2, MaxUploadSize: 1 << 20}

	return &fixture{
		svc:   NewObjectService(db, rm, blobs, codec, cfg, logging.Nop(), opts...),
		db:    db,
		rm:    rm,
		blobs: blobs,
	}
}

func (f *fixture) upload(t *testing.T, owner string, content string) *models.EncryptedObject {
	t.Helper()
	obj, err := f.svc.Upload(context.Background(), owner, UploadInput{Name: "note.txt", Content: []byte(content)})
	require.NoError(t, err)
	return obj
}

func (f *fixture) stored(t *testing.T, id string) *models.EncryptedObject {
	t.Helper()
	obj, err := f.rm.Objects(f.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return obj
}

// actions returns the object's audit actions in the order they happened.
func (f *fixture) actions(t *testing.T, id string) []models.AuditAction {
	t.Helper()
	events, err := f.rm.Audit(f.db).ListByObject(context.Background(), id)
	require.NoError(t, err)
	out := make([]models.AuditAction, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Action)
	}
	slices.Reverse(out)
	return out
}

func (f *fixture) blobPath(obj *models.EncryptedObject) string {
	return filepath.Join(f.blobs.Root(), filepath.FromSlash(obj.StorageLocator))
}

// flipByte overwrites one ciphertext byte on disk, behind the service's back.
func (f *fixture) flipByte(t *testing.T, obj *models.EncryptedObject, offset int) {
	t.Helper()
	p := f.blobPath(obj)
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	b[offset] ^= 0x01
	require.NoError(t, os.WriteFile(p, b, 0o600))
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }
