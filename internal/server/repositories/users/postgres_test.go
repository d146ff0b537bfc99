package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/sealvault/internal/common"
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

var joined = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*NULLIF\(\$3,\s*''\),\s*\$4\)$`
	mock.ExpectExec(q).
		WithArgs("u-1", "alice", "alice@example.com", joined).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), &models.User{ID: "u-1", UserName: "alice", Email: "alice@example.com", CreatedAt: joined})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_GeneratesID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), &models.User{UserName: "bob"})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreate_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	_, err := repo.Create(context.Background(), &models.User{})
	assert.ErrorIs(t, err, common.ErrValidation)

	mock.ExpectExec(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))
	_, err = repo.Create(context.Background(), &models.User{UserName: "alice"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGetBy(t *testing.T) {
	tests := []struct {
		name   string
		column string
		call   func(*SQLRepository) (*models.User, error)
		arg    string
	}{
		{"by id", "id", func(r *SQLRepository) (*models.User, error) { return r.GetByID(context.Background(), "u-1") }, "u-1"},
		{"by username", "username", func(r *SQLRepository) (*models.User, error) { return r.GetByUsername(context.Background(), "alice") }, "alice"},
		{"by email", "email", func(r *SQLRepository) (*models.User, error) { return r.GetByEmail(context.Background(), "a@x.io") }, "a@x.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			q := `(?s)^SELECT\s+id,\s*username,\s*COALESCE\(email,\s*''\),\s*created_at\s+FROM\s+users\s+WHERE\s+` + tt.column + `\s*=\s*\$1$`
			mock.ExpectQuery(q).WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "created_at"}).
					AddRow("u-1", "alice", "a@x.io", joined))

			got, err := tt.call(repo)
			require.NoError(t, err)
			assert.Equal(t, &models.User{ID: "u-1", UserName: "alice", Email: "a@x.io", CreatedAt: joined}, got)
		})
	}
}

func TestGetBy_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByEmail(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrorNotFound, "empty email never matches")
}

func TestGetBy_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users`).WillReturnError(errors.New("conn reset"))
	_, err := repo.GetByID(context.Background(), "u-1")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*conn reset`, err.Error())
}
