// Package auditlog persists audit events. The table is append-only: rows are
// inserted and read, never updated or deleted.
package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, ev *models.AuditEvent) error
	// ListByObject returns the object's events newest first.
	ListByObject(ctx context.Context, objectID string) ([]models.AuditEvent, error)
}

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite}
}

func (r *SQLRepository) Append(ctx context.Context, ev *models.AuditEvent) error {
	meta := ev.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query :=
		`INSERT INTO audit_events (id, object_id, action, actor_id, target_principal_id, occurred_at, metadata)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)`

	_, err = r.db.ExecContext(ctx, r.dialect.Rebind(query),
		ev.ID, ev.ObjectID, string(ev.Action), ev.ActorID, ev.TargetPrincipalID, ev.Timestamp.UTC(), string(encoded))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) ListByObject(ctx context.Context, objectID string) ([]models.AuditEvent, error) {
	query :=
		`SELECT id, object_id, action, actor_id, COALESCE(target_principal_id, ''), occurred_at, metadata
		 FROM audit_events
		 WHERE object_id = $1
		 ORDER BY occurred_at DESC, seq DESC`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select audit events: %w", err)
	}
	defer rows.Close()

	var result []models.AuditEvent
	for rows.Next() {
		var (
			ev     models.AuditEvent
			action string
			meta   []byte
		)
		if err := rows.Scan(&ev.ID, &ev.ObjectID, &action, &ev.ActorID, &ev.TargetPrincipalID, &ev.Timestamp, &meta); err != nil {
			return nil, err
		}
		ev.Action = models.AuditAction(action)
		ev.Timestamp = ev.Timestamp.UTC()
		if err := decodeMetadata(meta, &ev); err != nil {
			return nil, err
		}
		result = append(result, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func decodeMetadata(raw []byte, ev *models.AuditEvent) error {
	if len(raw) == 0 {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("decode metadata of %s: %w", ev.ID, err)
	}
	if len(meta) > 0 {
		ev.Metadata = meta
	}
	return nil
}

