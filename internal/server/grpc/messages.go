package grpc

import (
	"time"

	"github.com/dmitrijs2005/sealvault/internal/integrity"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/dmitrijs2005/sealvault/internal/server/services"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type UploadRequest struct {
	Name      string         `json:"name"`
	MimeType  string         `json:"mime_type,omitempty"`
	Content   []byte         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
}

type ObjectRequest struct {
	ID string `json:"id"`
}

type ShareRequest struct {
	ID     string                `json:"id"`
	Target services.PrincipalRef `json:"target"`
}

type UnshareRequest struct {
	ID          string `json:"id"`
	PrincipalID string `json:"principal_id"`
}

type ListRequest struct{}

// ObjectInfo is the caller-facing view of a stored object. The storage
// locator stays server-side.
type ObjectInfo struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"owner_id"`
	OriginalName    string           `json:"original_name"`
	MimeType        string           `json:"mime_type"`
	Size            int64            `json:"size"`
	IntegrityDigest string           `json:"integrity_digest"`
	Status          models.Status    `json:"status"`
	Watermark       models.Watermark `json:"watermark"`
	SharedWith      []models.Grant   `json:"shared_with,omitempty"`
	ExpiresAt       *time.Time       `json:"expires_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

type ObjectResponse struct {
	Object *ObjectInfo `json:"object"`
}

type DownloadResponse struct {
	Object    *ObjectInfo    `json:"object"`
	Content   []byte         `json:"content"`
	Watermark map[string]any `json:"watermark"`
}

type VerifyResponse struct {
	integrity.Result
}

type DeleteResponse struct{}

type ListResponse struct {
	Owned  []*ObjectInfo `json:"owned"`
	Shared []*ObjectInfo `json:"shared"`
}

type AuditEventInfo struct {
	ID                string             `json:"id"`
	Action            models.AuditAction `json:"action"`
	ActorID           string             `json:"actor_id"`
	TargetPrincipalID string             `json:"target_principal_id,omitempty"`
	Timestamp         time.Time          `json:"timestamp"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
}

type AuditLogResponse struct {
	Events []AuditEventInfo `json:"events"`
}

func toObjectInfo(o *models.EncryptedObject) *ObjectInfo {
	if o == nil {
		return nil
	}
	return &ObjectInfo{
		ID:              o.ID,
		OwnerID:         o.OwnerID,
		OriginalName:    o.OriginalName,
		MimeType:        o.MimeType,
		Size:            o.SizeOriginal,
		IntegrityDigest: o.IntegrityDigest,
		Status:          o.Status,
		Watermark:       o.Watermark,
		SharedWith:      o.SharedWith,
		ExpiresAt:       o.ExpiresAt,
		CreatedAt:       o.CreatedAt,
	}
}

func toObjectInfos(objs []*models.EncryptedObject) []*ObjectInfo {
	out := make([]*ObjectInfo, 0, len(objs))
	for _, o := range objs {
		out = append(out, toObjectInfo(o))
	}
	return out
}
