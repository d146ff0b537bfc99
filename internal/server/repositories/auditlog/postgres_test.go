package auditlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var at = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestAppend(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+audit_events\s*\(id,\s*object_id,\s*action,\s*actor_id,\s*target_principal_id,\s*occurred_at,\s*metadata\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*NULLIF\(\$5,\s*''\),\s*\$6,\s*\$7\)$`
	mock.ExpectExec(q).
		WithArgs("e1", "o1", "share", "alice", "bob", at, `{}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).
		WithArgs("e2", "o1", "verify", "alice", "", at, `{"status":"secure"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Append(context.Background(), &models.AuditEvent{
		ID: "e1", ObjectID: "o1", Action: models.ActionShare, ActorID: "alice", TargetPrincipalID: "bob", Timestamp: at,
	}))
	require.NoError(t, repo.Append(context.Background(), &models.AuditEvent{
		ID: "e2", ObjectID: "o1", Action: models.ActionVerify, ActorID: "alice", Timestamp: at,
		Metadata: map[string]any{"status": "secure"},
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+audit_events`).WillReturnError(errors.New("read-only"))

	err := repo.Append(context.Background(), &models.AuditEvent{ID: "e1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*read-only`, err.Error())
}

func TestAppend_BadMetadata(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	err := repo.Append(context.Background(), &models.AuditEvent{ID: "e1", Metadata: map[string]any{"ch": make(chan int)}})
	assert.Error(t, err)
}

func TestListByObject(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,.*FROM\s+audit_events\s+WHERE\s+object_id\s*=\s*\$1\s+ORDER\s+BY\s+occurred_at\s+DESC,\s*seq\s+DESC$`
	rows := sqlmock.NewRows([]string{"id", "object_id", "action", "actor_id", "target_principal_id", "occurred_at", "metadata"}).
		AddRow("e2", "o1", "tamper", "bob", "", at.Add(time.Minute), []byte(`{"expected_digest":"aa","actual_digest":"bb"}`)).
		AddRow("e1", "o1", "upload", "alice", "", at, []byte(`{}`))
	mock.ExpectQuery(q).WithArgs("o1").WillReturnRows(rows)

	got, err := repo.ListByObject(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ActionTamper, got[0].Action)
	assert.Equal(t, "bb", got[0].Metadata["actual_digest"])
	assert.Nil(t, got[1].Metadata)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByObject_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(`FROM\s+audit_events`).WillReturnError(errors.New("boom"))

		_, err := repo.ListByObject(context.Background(), "o1")
		require.Error(t, err)
		assert.Regexp(t, `failed to select audit events: .*boom`, err.Error())
	})

	t.Run("metadata", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		rows := sqlmock.NewRows([]string{"id", "object_id", "action", "actor_id", "target_principal_id", "occurred_at", "metadata"}).
			AddRow("e1", "o1", "upload", "alice", "", at, []byte(`{oops`))
		mock.ExpectQuery(`FROM\s+audit_events`).WillReturnRows(rows)

		_, err := repo.ListByObject(context.Background(), "o1")
		assert.Error(t, err)
	})
}
