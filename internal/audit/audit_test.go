package audit

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/logging"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	got   []models.AuditEvent
	err   error
	panic bool
}

func (f *fakeStore) Append(_ context.Context, ev *models.AuditEvent) error {
	if f.panic {
		panic("db gone")
	}
	f.got = append(f.got, *ev)
	return f.err
}

func TestStoreRecorder_FillsIDAndTimestamp(t *testing.T) {
	st := &fakeStore{}
	r := NewStoreRecorder(st, logging.Nop())
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	r.Record(context.Background(), models.AuditEvent{ObjectID: "o1", Action: models.ActionUpload, ActorID: "u1"})

	require.Len(t, st.got, 1)
	assert.NotEmpty(t, st.got[0].ID)
	assert.Equal(t, fixed, st.got[0].Timestamp)
	assert.Equal(t, models.ActionUpload, st.got[0].Action)
}

func TestStoreRecorder_KeepsGivenIDAndTimestamp(t *testing.T) {
	st := &fakeStore{}
	r := NewStoreRecorder(st, logging.Nop())
	at := time.Date(2020, 5, 5, 5, 5, 5, 0, time.UTC)

	r.Record(context.Background(), models.AuditEvent{ID: "ev-1", Timestamp: at, Action: models.ActionVerify})

	require.Len(t, st.got, 1)
	assert.Equal(t, "ev-1", st.got[0].ID)
	assert.Equal(t, at, st.got[0].Timestamp)
}

func TestStoreRecorder_SwallowsStoreError(t *testing.T) {
	var buf bytes.Buffer
	st := &fakeStore{err: errors.New("disk full")}
	r := NewStoreRecorder(st, logging.New(&buf, "text", "debug"))

	assert.NotPanics(t, func() {
		r.Record(context.Background(), models.AuditEvent{ObjectID: "o1", Action: models.ActionShare})
	})
	assert.Contains(t, buf.String(), "audit write failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestStoreRecorder_SwallowsStorePanic(t *testing.T) {
	r := NewStoreRecorder(&fakeStore{panic: true}, logging.Nop())
	assert.NotPanics(t, func() {
		r.Record(context.Background(), models.AuditEvent{Action: models.ActionDelete})
	})
}

func TestStoreRecorder_LogsSecurityEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewStoreRecorder(&fakeStore{}, logging.New(&buf, "text", "debug"))

	r.Record(context.Background(), models.AuditEvent{ObjectID: "o9", Action: models.ActionTamper})

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "object_id=o9")
}

func TestMemoryAndNop(t *testing.T) {
	m := &Memory{}
	m.Record(context.Background(), models.AuditEvent{Action: models.ActionUpload})
	m.Record(context.Background(), models.AuditEvent{Action: models.ActionDownload})
	assert.Equal(t, []models.AuditAction{models.ActionUpload, models.ActionDownload}, m.Actions())

	Nop{}.Record(context.Background(), models.AuditEvent{})
}
