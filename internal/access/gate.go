// Package access authorizes operations on stored objects. Every check runs
// before any mutation or content read; a denial leaves state untouched.
package access

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
)

type Gate struct {
	now func() time.Time
}

func NewGate() *Gate {
	return &Gate{now: time.Now}
}

// NewGateWithClock is NewGate with an injected clock for expiry checks.
func NewGateWithClock(now func() time.Time) *Gate {
	return &Gate{now: now}
}

// HasReadAccess is true iff principal owns obj or holds a grant, and obj is
// neither soft-deleted nor past its expiry.
func (g *Gate) HasReadAccess(obj *models.EncryptedObject, principalID string) bool {
	return g.CheckRead(obj, principalID) == nil
}

// IsOwner is strict identity equality with the owner.
func (g *Gate) IsOwner(obj *models.EncryptedObject, principalID string) bool {
	return obj != nil && obj.IsOwner(principalID)
}

// CanShare is false once obj has been found tampered.
func (g *Gate) CanShare(obj *models.EncryptedObject) bool {
	return obj.Status != models.StatusTampered
}

// CheckRead guards download and verify.
func (g *Gate) CheckRead(obj *models.EncryptedObject, principalID string) error {
	if err := exists(obj); err != nil {
		return err
	}
	if obj.Expired(g.now()) {
		return fmt.Errorf("%w: access to object %s has expired", common.ErrorUnauthorized, obj.ID)
	}
	if !obj.IsOwner(principalID) && !obj.IsSharedWith(principalID) {
		return fmt.Errorf("%w: no access to object %s", common.ErrorUnauthorized, obj.ID)
	}
	return nil
}

// CheckOwner guards owner-only operations: unshare, delete and audit view.
func (g *Gate) CheckOwner(obj *models.EncryptedObject, principalID string) error {
	if err := exists(obj); err != nil {
		return err
	}
	if !obj.IsOwner(principalID) {
		return fmt.Errorf("%w: only the owner may do this", common.ErrorUnauthorized)
	}
	return nil
}

// CheckShare guards share. Order matters: ownership first, then self-share
// (rejected regardless of status), then the tamper block. A tamper block
// wraps common.ErrTamperBlocked so callers can report it separately.
func (g *Gate) CheckShare(obj *models.EncryptedObject, actorID, targetID string) error {
	if err := g.CheckOwner(obj, actorID); err != nil {
		return err
	}
	if targetID == obj.OwnerID {
		return fmt.Errorf("%w: cannot share an object with its owner", common.ErrorUnauthorized)
	}
	if !g.CanShare(obj) {
		return fmt.Errorf("%w: object %s", common.ErrTamperBlocked, obj.ID)
	}
	return nil
}

func exists(obj *models.EncryptedObject) error {
	if obj == nil || obj.Deleted {
		return fmt.Errorf("%w: object", common.ErrorNotFound)
	}
	return nil
}
