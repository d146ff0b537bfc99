// Package services implements the object operations: upload, download,
// verify, share, unshare, delete, audit view and listing. Every operation
// runs its access check before any mutation or content read.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/access"
	"github.com/dmitrijs2005/sealvault/internal/audit"
	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/cryptox"
	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/integrity"
	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/config"
	"github.com/dmitrijs2005/sealvault/internal/server/locks"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/objects"
	"github.com/dmitrijs2005/sealvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sealvault/internal/server/storage"
	"github.com/dmitrijs2005/sealvault/internal/workerpool"
	"github.com/sethvargo/go-retry"
)

const (
	conflictRetries = 3
	conflictBackoff = 10 * time.Millisecond
)

type ObjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	codec       *cryptox.Codec
	recorder    audit.Recorder
	gate        *access.Gate
	verifier    *integrity.Verifier
	pool        *workerpool.Pool
	locks       *locks.Keyed
	log         logging.Logger
	now         func() time.Time

	maxUploadSize int64
}

// Option customises an ObjectService.
type Option func(*ObjectService)

// WithRecorder replaces the database-backed audit recorder.
func WithRecorder(r audit.Recorder) Option {
	return func(s *ObjectService) { s.recorder = r }
}

// WithClock sets the clock used for timestamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *ObjectService) { s.now = now }
}

func NewObjectService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.Storage, codec *cryptox.Codec,
	cfg *config.Config, log logging.Logger, opts ...Option) *ObjectService {

	s := &ObjectService{
		db:            db,
		repomanager:   m,
		storage:       blobs,
		codec:         codec,
		pool:          workerpool.New(cfg.CryptoWorkers),
		locks:         locks.NewKeyed(),
		log:           log.With("module", "objects"),
		now:           time.Now,
		maxUploadSize: cfg.MaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.recorder == nil {
		s.recorder = audit.NewStoreRecorder(m.Audit(db), log)
	}
	s.gate = access.NewGateWithClock(s.now)
	s.verifier = integrity.NewVerifier(blobs, statusStore{svc: s}, s.recorder, s.pool, log)

	return s
}

func (s *ObjectService) objects() objects.Repository {
	return s.repomanager.Objects(s.db)
}

// withRetry retries fn while it reports a version conflict.
func (s *ObjectService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(conflictRetries, retry.NewConstant(conflictBackoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, common.ErrVersionConflict) {
			s.log.Debug(ctx, "version conflict, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// mutate loads the freshest copy of the object inside a transaction and
// hands it to fn. fn must finish with a versioned write; a conflict rolls
// the transaction back and the whole step is retried.
func (s *ObjectService) mutate(ctx context.Context, id string,
	fn func(ctx context.Context, repo objects.Repository, cur *models.EncryptedObject) error) error {

	return s.withRetry(ctx, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repomanager.Objects(tx)
			cur, err := repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			return fn(ctx, repo, cur)
		})
	})
}

// statusStore lets the integrity verifier persist results without knowing
// about versions or transactions.
type statusStore struct {
	svc *ObjectService
}

func (st statusStore) TransitionStatus(ctx context.Context, id string, apply func(models.Status) models.Status) (models.Status, error) {
	return st.svc.transitionStatus(ctx, id, apply)
}

// transitionStatus applies a status change on top of the stored status.
func (s *ObjectService) transitionStatus(ctx context.Context, id string, apply func(models.Status) models.Status) (models.Status, error) {
	var result models.Status

	err := s.mutate(ctx, id, func(ctx context.Context, repo objects.Repository, cur *models.EncryptedObject) error {
		next := apply(cur.Status)
		if next == cur.Status {
			result = next
			return nil
		}
		if _, err := repo.UpdateStatus(ctx, id, next, cur.Version); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return "", err
	}

	return result, nil
}

// load fetches an object for an access check.
func (s *ObjectService) load(ctx context.Context, id string) (*models.EncryptedObject, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: object id is required", common.ErrValidation)
	}
	obj, err := s.objects().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("object %s: %w", id, common.ErrorNotFound)
		}
		return nil, err
	}
	return obj, nil
}
