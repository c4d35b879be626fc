package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var userCols = []string{"id", "name", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUserPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Ada", "ada", "ada@example.com", "hash", now, now).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Ada", "ada", "ada@example.com", "hash", now, now))

	u, err := repo.Create(context.Background(), &model.User{Name: "Ada", Username: "ada", Email: "ada@example.com", PasswordHash: "hash"})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByLogin(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1 OR username = \\$1").
		WithArgs("ada").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Ada", "ada", "ada@example.com", "hash", time.Now(), time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1 OR username = \\$1").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.FindByLogin(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = repo.FindByLogin(ctx, "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_ExistsByEmailOrUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ada@example.com", "ada").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmailOrUsername(context.Background(), "ada@example.com", "ada")

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
