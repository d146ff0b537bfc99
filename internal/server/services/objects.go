package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/integrity"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sealvault/internal/watermark"
	"github.com/dmitrijs2005/sealvault/internal/workerpool"
	"github.com/google/uuid"
)

type UploadInput struct {
	Name     string
	MimeType string
	Content  []byte
	// Metadata is stamped into the watermark under "metadata".
	Metadata  map[string]any
	ExpiresAt *time.Time
}

type DownloadResult struct {
	Object    *models.EncryptedObject
	Content   []byte
	Watermark watermark.Record
}

// Listing is what a principal can see: objects it owns and objects shared
// with it, newest first.
type Listing struct {
	Owned  []*models.EncryptedObject
	Shared []*models.EncryptedObject
}

// Upload watermarks, encrypts and stores content owned by actorID.
func (s *ObjectService) Upload(ctx context.Context, actorID string, in UploadInput) (*models.EncryptedObject, error) {
	if err := s.validateUpload(in); err != nil {
		return nil, err
	}

	username, err := s.username(ctx, actorID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := watermark.Provenance(actorID, username, now, in.Metadata)

	frame, err := watermark.Embed(in.Content, record)
	if err != nil {
		return nil, fmt.Errorf("embed watermark: %w", err)
	}

	envelope, err := workerpool.Run(ctx, s.pool, func() ([]byte, error) {
		return s.codec.Encrypt(frame)
	})
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	digest, err := workerpool.Run(ctx, s.pool, func() (string, error) {
		return integrity.Digest(envelope), nil
	})
	if err != nil {
		return nil, err
	}

	locator, err := s.storage.Put(ctx, in.Name, envelope)
	if err != nil {
		return nil, err
	}

	obj := &models.EncryptedObject{
		ID:              uuid.NewString(),
		OwnerID:         actorID,
		StorageLocator:  locator,
		SizeOriginal:    int64(len(in.Content)),
		MimeType:        detectMimeType(in),
		OriginalName:    filepath.Base(in.Name),
		IntegrityDigest: digest,
		Status:          models.StatusUnverified,
		Watermark: models.Watermark{
			OwnerID:   actorID,
			Username:  username,
			CreatedAt: now,
			Embedded:  true,
			Metadata:  in.Metadata,
		},
		ExpiresAt: in.ExpiresAt,
		CreatedAt: now,
	}

	if err := s.objects().Create(ctx, obj); err != nil {
		if derr := s.storage.Delete(ctx, locator); derr != nil {
			s.log.Warn(ctx, "failed to remove orphaned blob", "locator", locator, "error", derr)
		}
		return nil, fmt.Errorf("error creating object: %w", err)
	}

	s.recorder.Record(ctx, models.AuditEvent{
		ObjectID: obj.ID,
		Action:   models.ActionUpload,
		ActorID:  actorID,
		Metadata: map[string]any{
			"original_name": obj.OriginalName,
			"mime_type":     obj.MimeType,
			"size":          obj.SizeOriginal,
		},
	})

	s.log.Info(ctx, "object uploaded", "object_id", obj.ID, "owner_id", actorID, "size", obj.SizeOriginal)
	return obj, nil
}

func (s *ObjectService) validateUpload(in UploadInput) error {
	switch {
	case len(in.Content) == 0:
		return fmt.Errorf("%w: no content provided", common.ErrValidation)
	case s.maxUploadSize > 0 && int64(len(in.Content)) > s.maxUploadSize:
		return fmt.Errorf("%w: content exceeds %d bytes", common.ErrValidation, s.maxUploadSize)
	case in.Name == "":
		return fmt.Errorf("%w: file name is required", common.ErrValidation)
	case in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()):
		return fmt.Errorf("%w: expiry must be in the future", common.ErrValidation)
	}
	return nil
}

func detectMimeType(in UploadInput) string {
	if in.MimeType != "" {
		return in.MimeType
	}
	if t := mime.TypeByExtension(filepath.Ext(in.Name)); t != "" {
		return t
	}
	return http.DetectContentType(in.Content)
}

// Download verifies, decrypts and unframes an object. The digest check goes
// through the same verifier as Verify, so its outcome is persisted; a
// mismatch aborts before any decryption.
func (s *ObjectService) Download(ctx context.Context, actorID, id string) (*DownloadResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	obj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckRead(obj, actorID); err != nil {
		return nil, err
	}

	res, blob, err := s.verifier.Verify(ctx, obj, actorID, integrity.SourceDownload)
	if err != nil {
		return nil, err
	}
	if !res.Matched {
		return nil, fmt.Errorf("%w: digest mismatch for object %s", common.ErrIntegrity, id)
	}

	frame, err := workerpool.Run(ctx, s.pool, func() ([]byte, error) {
		return s.codec.Decrypt(blob)
	})
	if err != nil {
		s.log.Error(ctx, "decrypt failed after digest match", "object_id", id, "error", err)
		return nil, err
	}

	content, wm, err := watermark.Extract(frame)
	if err != nil {
		s.log.Warn(ctx, "watermark unreadable", "object_id", id, "error", err)
	}

	s.recorder.Record(ctx, models.AuditEvent{
		ObjectID: id,
		Action:   models.ActionDownload,
		ActorID:  actorID,
		Metadata: map[string]any{"watermark": wm},
	})

	return &DownloadResult{Object: obj, Content: content, Watermark: wm}, nil
}

// Verify checks the stored ciphertext against the digest recorded at upload
// and persists the resulting status. Owners and grantees may verify.
func (s *ObjectService) Verify(ctx context.Context, actorID, id string) (integrity.Result, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	obj, err := s.load(ctx, id)
	if err != nil {
		return integrity.Result{}, err
	}
	if err := s.gate.CheckRead(obj, actorID); err != nil {
		return integrity.Result{}, err
	}

	res, _, err := s.verifier.Verify(ctx, obj, actorID, integrity.SourceVerify)
	return res, err
}

// Share grants target read access. Sharing a tampered object is refused
// with common.ErrTamperBlocked and recorded as a tamper_share_attempt.
func (s *ObjectService) Share(ctx context.Context, actorID, id string, target PrincipalRef) (*models.EncryptedObject, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	obj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckOwner(obj, actorID); err != nil {
		return nil, err
	}

	user, err := s.resolvePrincipal(ctx, target)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, id, func(ctx context.Context, repo objects.Repository, cur *models.EncryptedObject) error {
		if err := s.gate.CheckShare(cur, actorID, user.ID); err != nil {
			return err
		}
		added, err := repo.InsertGrant(ctx, id, models.Grant{
			PrincipalID: user.ID,
			GrantedAt:   s.now().UTC(),
			Permission:  models.PermissionRead,
		})
		if err != nil || !added {
			return err
		}
		_, err = repo.BumpVersion(ctx, id, cur.Version)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrTamperBlocked) {
			s.log.Warn(ctx, "share blocked on tampered object", "object_id", id, "actor_id", actorID, "target_id", user.ID)
			s.recorder.Record(ctx, models.AuditEvent{
				ObjectID:          id,
				Action:            models.ActionTamperShareAttempt,
				ActorID:           actorID,
				TargetPrincipalID: user.ID,
			})
		}
		return nil, err
	}

	s.recorder.Record(ctx, models.AuditEvent{
		ObjectID:          id,
		Action:            models.ActionShare,
		ActorID:           actorID,
		TargetPrincipalID: user.ID,
	})

	return s.load(ctx, id)
}

// Unshare revokes a grant. Removing a grant that does not exist is a no-op.
// Unlike Share it stays allowed on tampered objects.
func (s *ObjectService) Unshare(ctx context.Context, actorID, id, principalID string) (*models.EncryptedObject, error) {
	if principalID == "" {
		return nil, fmt.Errorf("%w: principal id is required", common.ErrValidation)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	obj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckOwner(obj, actorID); err != nil {
		return nil, err
	}

	err = s.mutate(ctx, id, func(ctx context.Context, repo objects.Repository, cur *models.EncryptedObject) error {
		removed, err := repo.DeleteGrant(ctx, id, principalID)
		if err != nil || !removed {
			return err
		}
		_, err = repo.BumpVersion(ctx, id, cur.Version)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, models.AuditEvent{
		ObjectID:          id,
		Action:            models.ActionUnshare,
		ActorID:           actorID,
		TargetPrincipalID: principalID,
	})

	return s.load(ctx, id)
}

// Delete soft-deletes an object, then removes its blob best-effort. The
// row and its audit trail are kept.
func (s *ObjectService) Delete(ctx context.Context, actorID, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	obj, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.gate.CheckOwner(obj, actorID); err != nil {
		return err
	}

	err = s.mutate(ctx, id, func(ctx context.Context, repo objects.Repository, cur *models.EncryptedObject) error {
		if cur.Deleted {
			return fmt.Errorf("object %s: %w", id, common.ErrorNotFound)
		}
		_, err := repo.MarkDeleted(ctx, id, s.now().UTC(), cur.Version)
		return err
	})
	if err != nil {
		return err
	}

	s.recorder.Record(ctx, models.AuditEvent{
		ObjectID: id,
		Action:   models.ActionDelete,
		ActorID:  actorID,
	})

	if err := s.storage.Delete(ctx, obj.StorageLocator); err != nil {
		s.log.Warn(ctx, "failed to remove blob of deleted object", "object_id", id, "locator", obj.StorageLocator, "error", err)
	}

	return nil
}

// AuditLog returns the object's audit events, newest first. Owner only.
func (s *ObjectService) AuditLog(ctx context.Context, actorID, id string) ([]models.AuditEvent, error) {
	obj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckOwner(obj, actorID); err != nil {
		return nil, err
	}

	events, err := s.repomanager.Audit(s.db).ListByObject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error fetching audit log: %w", err)
	}
	return events, nil
}

// List returns the live objects actorID owns or has been granted.
func (s *ObjectService) List(ctx context.Context, actorID string) (*Listing, error) {
	repo := s.objects()

	owned, err := repo.ListOwned(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("error listing owned objects: %w", err)
	}

	shared, err := repo.ListSharedWith(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("error listing shared objects: %w", err)
	}

	return &Listing{Owned: owned, Shared: shared}, nil
}
