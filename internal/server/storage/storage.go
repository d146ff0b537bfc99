// Package storage keeps ciphertext blobs on durable storage. Blobs are
// written once under a fresh random locator and never modified in place.
// Every failure is reported wrapped in common.ErrStorage.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/google/uuid"
)

// Storage is the blob store contract used by services.
type Storage interface {
	// Put stores data under a new locator derived from originalName.
	Put(ctx context.Context, originalName string, data []byte) (string, error)
	Get(ctx context.Context, locator string) ([]byte, error)
	Delete(ctx context.Context, locator string) error
}

const (
	locatorPrefix = "objects"
	locatorSuffix = ".enc"
	maxExtLen     = 16
)

// NewLocator returns objects/YYYY/M/D/<uuid><ext>.enc. The original file
// extension is kept so operators can tell blob types apart; nothing else
// from the user-supplied name leaks into the locator.
func NewLocator(now time.Time, originalName string) string {
	return fmt.Sprintf("%s/%d/%d/%d/%s%s%s",
		locatorPrefix, now.Year(), int(now.Month()), now.Day(), uuid.New(), safeExt(originalName), locatorSuffix)
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}

// validLocator rejects anything that could escape the store root.
func validLocator(locator string) error {
	if locator == "" ||
		strings.HasPrefix(locator, "/") ||
		strings.Contains(locator, "\\") ||
		path.Clean(locator) != locator ||
		strings.HasPrefix(locator, "../") || locator == ".." {
		return fmt.Errorf("%w: invalid locator %q", common.ErrStorage, locator)
	}
	return nil
}

func storageErr(op, locator string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", common.ErrStorage, op, locator, err)
}
