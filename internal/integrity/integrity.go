// Package integrity provides tamper evidence over stored ciphertext and
// drives the object status state machine.
//
// The digest is computed over the ciphertext, not the plaintext, at upload
// time and is never recomputed to follow altered bytes.
package integrity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/audit"
	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/workerpool"
)

// Digest returns the lowercase hex SHA-256 of b.
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Equal compares two hex digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Where a verification was requested from; carried in audit metadata.
const (
	SourceVerify   = "verify"
	SourceDownload = "download"
)

// BlobReader loads ciphertext by locator.
type BlobReader interface {
	Get(ctx context.Context, locator string) ([]byte, error)
}

// StatusStore persists a status transition. apply receives the freshest
// stored status and returns the new one; implementations must re-read and
// re-apply on concurrent modification so a tampered status is never
// overwritten by a stale write.
type StatusStore interface {
	TransitionStatus(ctx context.Context, objectID string, apply func(models.Status) models.Status) (models.Status, error)
}

// Result of one verification.
type Result struct {
	Matched        bool          `json:"matched"`
	Status         models.Status `json:"status"`
	ExpectedDigest string        `json:"expected_digest"`
	ActualDigest   string        `json:"actual_digest"`
}

// Verifier is the single verification entry point used by both explicit
// verify requests and the download path.
type Verifier struct {
	blobs    BlobReader
	statuses StatusStore
	recorder audit.Recorder
	pool     *workerpool.Pool
	log      logging.Logger
}

func NewVerifier(blobs BlobReader, statuses StatusStore, recorder audit.Recorder, pool *workerpool.Pool, log logging.Logger) *Verifier {
	return &Verifier{
		blobs:    blobs,
		statuses: statuses,
		recorder: recorder,
		pool:     pool,
		log:      log.With("module", "integrity"),
	}
}

// Verify loads the ciphertext for obj, recomputes its digest and compares
// it with the digest stored at creation. The resulting status is always
// persisted and a verify or tamper audit event is always emitted. The
// loaded ciphertext is returned so callers can decrypt exactly the bytes
// that were checked.
//
// A mismatch is reported through Result.Matched, not as an error; callers
// decide whether it aborts their operation.
func (v *Verifier) Verify(ctx context.Context, obj *models.EncryptedObject, actorID, source string) (Result, []byte, error) {
	blob, err := v.blobs.Get(ctx, obj.StorageLocator)
	if err != nil {
		return Result{}, nil, fmt.Errorf("load ciphertext: %w", err)
	}

	actual, err := workerpool.Run(ctx, v.pool, func() (string, error) {
		return Digest(blob), nil
	})
	if err != nil {
		return Result{}, nil, err
	}

	matched := Equal(obj.IntegrityDigest, actual)
	res := Result{
		Matched:        matched,
		ExpectedDigest: obj.IntegrityDigest,
		ActualDigest:   actual,
	}

	status, perr := v.statuses.TransitionStatus(ctx, obj.ID, func(cur models.Status) models.Status {
		return cur.Next(matched)
	})
	if perr != nil {
		// Keep the in-memory view consistent with what was observed.
		status = obj.Status.Next(matched)
	}
	res.Status = status
	obj.Status = status

	action := models.ActionVerify
	if !matched {
		action = models.ActionTamper
		v.log.Error(ctx, "integrity digest mismatch",
			"object_id", obj.ID, "expected", res.ExpectedDigest, "actual", res.ActualDigest, "source", source)
	}

	v.recorder.Record(ctx, models.AuditEvent{
		ObjectID: obj.ID,
		Action:   action,
		ActorID:  actorID,
		Metadata: map[string]any{
			"expected_digest": res.ExpectedDigest,
			"actual_digest":   res.ActualDigest,
			"status":          string(res.Status),
			"source":          source,
		},
	})

	if perr != nil {
		perr = fmt.Errorf("persist status: %w", perr)
		if !matched {
			// A detected tamper must surface even when recording it failed.
			return res, nil, errors.Join(fmt.Errorf("%w: digest mismatch", common.ErrIntegrity), perr)
		}
		return res, nil, perr
	}

	return res, blob, nil
}
