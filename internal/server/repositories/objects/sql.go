package objects

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
)

const objectColumns = `o.id, o.owner_id, o.storage_locator, o.size_original, o.mime_type, o.original_name,
	o.integrity_digest, o.status, o.watermark, o.expires_at, o.created_at, o.deleted, o.deleted_at, o.version`

// SQLRepository implements Repository over database/sql. Queries are
// shared between dialects and rebound per driver.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func newSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.Rebind(query)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(s rowScanner) (*models.EncryptedObject, error) {
	var (
		o         models.EncryptedObject
		status    string
		watermark []byte
		expiresAt sql.NullTime
		deletedAt sql.NullTime
	)

	err := s.Scan(&o.ID, &o.OwnerID, &o.StorageLocator, &o.SizeOriginal, &o.MimeType, &o.OriginalName,
		&o.IntegrityDigest, &status, &watermark, &expiresAt, &o.CreatedAt, &o.Deleted, &deletedAt, &o.Version)
	if err != nil {
		return nil, err
	}

	o.Status = models.Status(status)
	if len(watermark) > 0 {
		if err := json.Unmarshal(watermark, &o.Watermark); err != nil {
			return nil, fmt.Errorf("decode watermark of %s: %w", o.ID, err)
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		o.ExpiresAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		o.DeletedAt = &t
	}
	o.CreatedAt = o.CreatedAt.UTC()

	return &o, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func (r *SQLRepository) Create(ctx context.Context, obj *models.EncryptedObject) error {
	watermark, err := json.Marshal(obj.Watermark)
	if err != nil {
		return fmt.Errorf("encode watermark: %w", err)
	}

	if obj.Version == 0 {
		obj.Version = 1
	}

	query := `INSERT INTO objects (id, owner_id, storage_locator, size_original, mime_type, original_name,
		integrity_digest, status, watermark, expires_at, created_at, deleted, deleted_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = r.db.ExecContext(ctx, r.q(query),
		obj.ID, obj.OwnerID, obj.StorageLocator, obj.SizeOriginal, obj.MimeType, obj.OriginalName,
		obj.IntegrityDigest, string(obj.Status), string(watermark), nullTime(obj.ExpiresAt),
		obj.CreatedAt.UTC(), obj.Deleted, nullTime(obj.DeletedAt), obj.Version)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, g := range obj.SharedWith {
		if _, err := r.InsertGrant(ctx, obj.ID, g); err != nil {
			return err
		}
	}

	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.EncryptedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects o WHERE o.id = $1`

	obj, err := scanObject(r.db.QueryRowContext(ctx, r.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if obj.SharedWith, err = r.grants(ctx, obj.ID); err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *SQLRepository) ListOwned(ctx context.Context, ownerID string) ([]*models.EncryptedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects o
		WHERE o.owner_id = $1 AND NOT o.deleted
		ORDER BY o.created_at DESC, o.id`
	return r.list(ctx, query, ownerID)
}

func (r *SQLRepository) ListSharedWith(ctx context.Context, principalID string) ([]*models.EncryptedObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects o
		JOIN object_grants g ON g.object_id = o.id
		WHERE g.principal_id = $1 AND NOT o.deleted
		ORDER BY o.created_at DESC, o.id`
	return r.list(ctx, query, principalID)
}

func (r *SQLRepository) list(ctx context.Context, query string, arg string) ([]*models.EncryptedObject, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), arg)
	if err != nil {
		return nil, fmt.Errorf("failed to select objects: %w", err)
	}

	var result []*models.EncryptedObject
	func() {
		defer rows.Close()
		for rows.Next() {
			var obj *models.EncryptedObject
			obj, err = scanObject(rows)
			if err != nil {
				return
			}
			result = append(result, obj)
		}
		err = rows.Err()
	}()
	if err != nil {
		return nil, err
	}

	// Grants are loaded after the cursor is closed: some drivers cannot run
	// a second statement on a connection with an open result set.
	for _, obj := range result {
		if obj.SharedWith, err = r.grants(ctx, obj.ID); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (r *SQLRepository) grants(ctx context.Context, objectID string) ([]models.Grant, error) {
	query := `SELECT principal_id, granted_at, permission FROM object_grants
		WHERE object_id = $1
		ORDER BY granted_at, principal_id`

	rows, err := r.db.QueryContext(ctx, r.q(query), objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select grants: %w", err)
	}
	defer rows.Close()

	var result []models.Grant
	for rows.Next() {
		var g models.Grant
		var perm string
		if err := rows.Scan(&g.PrincipalID, &g.GrantedAt, &perm); err != nil {
			return nil, err
		}
		g.GrantedAt = g.GrantedAt.UTC()
		g.Permission = models.Permission(perm)
		result = append(result, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// bump runs a versioned UPDATE ... RETURNING version and maps "no row" to
// a version conflict or not-found.
func (r *SQLRepository) bump(ctx context.Context, id string, query string, args ...any) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, r.q(query), args...).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("db error: %w", err)
	}

	var exists int
	err = r.db.QueryRowContext(ctx, r.q(`SELECT 1 FROM objects WHERE id = $1`), id).Scan(&exists)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, common.ErrorNotFound
	case err != nil:
		return 0, fmt.Errorf("db error: %w", err)
	default:
		return 0, common.ErrVersionConflict
	}
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, status models.Status, expectedVersion int64) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: unknown status %q", common.ErrValidation, status)
	}
	query := `UPDATE objects SET status = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version`
	return r.bump(ctx, id, query, string(status), id, expectedVersion)
}

func (r *SQLRepository) MarkDeleted(ctx context.Context, id string, at time.Time, expectedVersion int64) (int64, error) {
	query := `UPDATE objects SET deleted = TRUE, deleted_at = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version`
	return r.bump(ctx, id, query, at.UTC(), id, expectedVersion)
}

func (r *SQLRepository) BumpVersion(ctx context.Context, id string, expectedVersion int64) (int64, error) {
	query := `UPDATE objects SET version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version`
	return r.bump(ctx, id, query, id, expectedVersion)
}

func (r *SQLRepository) InsertGrant(ctx context.Context, objectID string, g models.Grant) (bool, error) {
	perm := g.Permission
	if perm == "" {
		perm = models.PermissionRead
	}

	query := `INSERT INTO object_grants (object_id, principal_id, granted_at, permission)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (object_id, principal_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, r.q(query), objectID, g.PrincipalID, g.GrantedAt.UTC(), string(perm))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *SQLRepository) DeleteGrant(ctx context.Context, objectID, principalID string) (bool, error) {
	query := `DELETE FROM object_grants WHERE object_id = $1 AND principal_id = $2`

	res, err := r.db.ExecContext(ctx, r.q(query), objectID, principalID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("unexpected rows affected: %d", n)
	}
}
