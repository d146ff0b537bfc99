// Package objects persists EncryptedObject rows and their share grants.
package objects

import (
	"context"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/server/models"
)

// Repository is the persistence contract for stored objects.
//
// Mutating methods take the version the caller last read and return
// common.ErrVersionConflict when the row moved on in the meantime.
type Repository interface {
	Create(ctx context.Context, obj *models.EncryptedObject) error
	// GetByID returns the object with its grants, soft-deleted or not.
	GetByID(ctx context.Context, id string) (*models.EncryptedObject, error)
	// ListOwned returns live objects owned by ownerID, newest first.
	ListOwned(ctx context.Context, ownerID string) ([]*models.EncryptedObject, error)
	// ListSharedWith returns live objects principalID holds a grant on, newest first.
	ListSharedWith(ctx context.Context, principalID string) ([]*models.EncryptedObject, error)

	UpdateStatus(ctx context.Context, id string, status models.Status, expectedVersion int64) (int64, error)
	MarkDeleted(ctx context.Context, id string, at time.Time, expectedVersion int64) (int64, error)
	BumpVersion(ctx context.Context, id string, expectedVersion int64) (int64, error)

	// InsertGrant adds a grant; it reports false when one already existed.
	InsertGrant(ctx context.Context, objectID string, g models.Grant) (bool, error)
	// DeleteGrant removes a grant; it reports false when there was none.
	DeleteGrant(ctx context.Context, objectID, principalID string) (bool, error)
}
