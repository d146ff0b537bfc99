// Package audit records security-relevant events about stored objects.
//
// Record is awaited by the calling operation so ordering relative to the
// response holds, but it never returns an error: a failed audit write is
// logged and dropped, and the primary operation proceeds unaffected.
// Failed writes are not retried.
package audit

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/google/uuid"
)

// Recorder is the append-only event sink used by services.
type Recorder interface {
	Record(ctx context.Context, ev models.AuditEvent)
}

// Store persists events. Satisfied by the audit repositories.
type Store interface {
	Append(ctx context.Context, ev *models.AuditEvent) error
}

// StoreRecorder writes events to a Store and swallows its failures.
type StoreRecorder struct {
	store Store
	log   logging.Logger
	now   func() time.Time
}

func NewStoreRecorder(store Store, log logging.Logger) *StoreRecorder {
	return &StoreRecorder{store: store, log: log.With("module", "audit"), now: time.Now}
}

// Record fills in the id and timestamp when missing and appends the event.
func (r *StoreRecorder) Record(ctx context.Context, ev models.AuditEvent) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = r.now().UTC()
	}

	if ev.Action == models.ActionTamper || ev.Action == models.ActionTamperShareAttempt {
		r.log.Error(ctx, "security event", "action", ev.Action, "object_id", ev.ObjectID, "actor_id", ev.ActorID)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Warn(ctx, "audit store panicked", "action", ev.Action, "object_id", ev.ObjectID, "panic", p)
		}
	}()

	if err := r.store.Append(ctx, &ev); err != nil {
		r.log.Warn(ctx, "audit write failed", "action", ev.Action, "object_id", ev.ObjectID, "error", err)
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Record(context.Context, models.AuditEvent) {}

// Memory keeps events in memory. Used by tests and local tooling.
type Memory struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (m *Memory) Record(_ context.Context, ev models.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

// Events returns a copy of the recorded events in order.
func (m *Memory) Events() []models.AuditEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.events)
}

// Actions returns the recorded actions in order.
func (m *Memory) Actions() []models.AuditAction {
	events := m.Events()
	out := make([]models.AuditAction, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Action)
	}
	return out
}
