package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sealvault/internal/common"
	"github.com/dmitrijs2005/sealvault/internal/dbx"
	"github.com/dmitrijs2005/sealvault/internal/server/models"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewPostgresRepository returns a users Repository for PostgreSQL.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.Postgres}
}

// NewSQLiteRepository returns a users Repository for SQLite.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.SQLite}
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.UserName == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO users (id, username, email, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4)`

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		user.ID, user.UserName, user.Email, user.CreatedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *SQLRepository) GetByUsername(ctx context.Context, userName string) (*models.User, error) {
	return r.getBy(ctx, "username", userName)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, common.ErrorNotFound
	}
	return r.getBy(ctx, "email", email)
}

// getBy looks a user up by one of the fixed, unique columns above.
func (r *SQLRepository) getBy(ctx context.Context, column string, value string) (*models.User, error) {
	query :=
		`SELECT id, username, COALESCE(email, ''), created_at FROM users
		 WHERE ` + column + ` = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), value).
		Scan(&user.ID, &user.UserName, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
