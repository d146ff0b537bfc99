// Package logging defines the structured-logging interface used across
// sealvault. The production implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key/value pairs, e.g.:
//
//	log.Info(ctx, "object uploaded", "object_id", id, "size", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions, such as an ephemeral
	// encryption key or a failed best-effort blob cleanup.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures. Security events (tamper detection, blocked
	// shares) are always logged at this level.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
