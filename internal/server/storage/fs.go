package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/filex"
)

// FSStorage keeps blobs as files below a root directory.
type FSStorage struct {
	root string
	now  func() time.Time
}

func NewFSStorage(dir string) (*FSStorage, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, storageErr("init", dir, err)
	}
	return &FSStorage{root: root, now: time.Now}, nil
}

// Root is the absolute directory blobs live under.
func (s *FSStorage) Root() string {
	return s.root
}

func (s *FSStorage) path(locator string) (string, error) {
	if err := validLocator(locator); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(locator)), nil
}

func (s *FSStorage) Put(ctx context.Context, originalName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storageErr("put", "", err)
	}

	locator := NewLocator(s.now(), originalName)
	p, err := s.path(locator)
	if err != nil {
		return "", err
	}

	if err := filex.WriteNew(p, data); err != nil {
		return "", storageErr("put", locator, err)
	}
	return locator, nil
}

func (s *FSStorage) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("get", locator, err)
	}

	p, err := s.path(locator)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return nil, storageErr("get", locator, err)
	}
	return b, nil
}

// Delete removes the blob. A blob that is already gone is not an error.
func (s *FSStorage) Delete(ctx context.Context, locator string) error {
	p, err := s.path(locator)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storageErr("delete", locator, err)
	}
	return nil
}
