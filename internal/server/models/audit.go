package models

import "time"

// AuditAction is the fixed vocabulary of audit events.
type AuditAction string

const (
	ActionUpload             AuditAction = "upload"
	ActionDownload           AuditAction = "download"
	ActionShare              AuditAction = "share"
	ActionUnshare            AuditAction = "unshare"
	ActionDelete             AuditAction = "delete"
	ActionVerify             AuditAction = "verify"
	ActionTamper             AuditAction = "tamper"
	ActionTamperShareAttempt AuditAction = "tamper_share_attempt"
)

// AuditEvent is append-only; once written it is never updated.
type AuditEvent struct {
	ID                string
	ObjectID          string
	Action            AuditAction
	ActorID           string
	TargetPrincipalID string
	Timestamp         time.Time
	Metadata          map[string]any
}
