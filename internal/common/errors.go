// Package common defines shared constants and sentinel errors used across
// sealvault layers. Callers should use errors.Is (or KindOf) to match these
// values; wrapping with fmt.Errorf("...: %w", err) keeps the kind intact.
package common

import "errors"

var (
	// Input errors.
	ErrValidation = errors.New("validation error")

	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Authorization errors. ErrTamperBlocked is kept apart from
	// ErrorUnauthorized so operators can tell "not allowed" from
	// "blocked for integrity reasons".
	ErrorUnauthorized = errors.New("unauthorized")
	ErrTamperBlocked  = errors.New("sharing blocked: object integrity compromised")

	// Content protection errors.
	ErrIntegrity     = errors.New("integrity check failed")
	ErrSerialization = errors.New("malformed watermark metadata")

	// Collaborator errors.
	ErrStorage = errors.New("storage error")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)

// Kind classifies an error into one of the failure kinds reported to callers.
type Kind string

const (
	KindNone          Kind = ""
	KindValidation    Kind = "validation"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindIntegrity     Kind = "integrity"
	KindTamperBlocked Kind = "tamper_blocked"
	KindStorage       Kind = "storage"
	KindSerialization Kind = "serialization"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

// KindOf returns the failure kind of err. Integrity and tamper kinds are
// checked first so a wrapped security failure is never reported as
// something milder.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrTamperBlocked):
		return KindTamperBlocked
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrorUnauthorized):
		return KindAuthorization
	case errors.Is(err, ErrStorage):
		return KindStorage
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	case errors.Is(err, ErrVersionConflict):
		return KindConflict
	default:
		return KindInternal
	}
}
