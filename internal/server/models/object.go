// Package models defines server-side data models persisted in the database.
package models

import (
	"slices"
	"time"
)

// Status is the tamper state of a stored object.
//
//	unverified -> secure   (digest matched)
//	unverified -> tampered (digest mismatch)
//	secure     -> tampered
//
// tampered is absorbing: no later verification moves an object out of it.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusSecure     Status = "secure"
	StatusTampered   Status = "tampered"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusSecure, StatusTampered:
		return true
	}
	return false
}

// Next returns the status after a verification with the given outcome.
func (s Status) Next(matched bool) Status {
	if s == StatusTampered || !matched {
		return StatusTampered
	}
	return StatusSecure
}

// Permission granted to a share recipient. Only read-only grants exist.
type Permission string

const PermissionRead Permission = "read"

// Grant is one entry of an object's share set.
type Grant struct {
	PrincipalID string     `json:"principal_id"`
	GrantedAt   time.Time  `json:"granted_at"`
	Permission  Permission `json:"permission"`
}

// Watermark is the provenance stamped into the plaintext on upload, kept
// alongside the object so it can be inspected without decrypting.
type Watermark struct {
	OwnerID   string         `json:"owner_id"`
	Username  string         `json:"username"`
	CreatedAt time.Time      `json:"created_at"`
	Embedded  bool           `json:"embedded"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// EncryptedObject is one stored item. The ciphertext lives in blob storage
// under StorageLocator and is never rewritten in place; IntegrityDigest is
// fixed at creation.
type EncryptedObject struct {
	ID              string
	OwnerID         string
	StorageLocator  string
	SizeOriginal    int64
	MimeType        string
	OriginalName    string
	IntegrityDigest string
	Status          Status
	Watermark       Watermark
	SharedWith      []Grant

	// ExpiresAt, when set, ends read access for everyone at that instant.
	ExpiresAt *time.Time
	CreatedAt time.Time

	Deleted   bool
	DeletedAt *time.Time

	// Version is bumped on every mutation and used for optimistic locking.
	Version int64
}

// IsOwner reports strict identity with the owner.
func (o *EncryptedObject) IsOwner(principalID string) bool {
	return principalID != "" && o.OwnerID == principalID
}

// IsSharedWith reports whether principalID holds a grant.
func (o *EncryptedObject) IsSharedWith(principalID string) bool {
	return slices.ContainsFunc(o.SharedWith, func(g Grant) bool {
		return g.PrincipalID == principalID
	})
}

// Expired reports whether the access window closed at or before now.
func (o *EncryptedObject) Expired(now time.Time) bool {
	return o.ExpiresAt != nil && !now.Before(*o.ExpiresAt)
}
