package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"financeapi/internal/model"
	"financeapi/internal/repository"
)

const userColumns = "id, name, username, email, password_hash, created_at, updated_at"

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Create inserts a new user. Email and username must already be normalized.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if r.db == nil {
		return nil, repository.ErrStoreUnavailable
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.now()
	const q = `
		INSERT INTO users (id, name, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, u.ID, u.Name, u.Username, u.Email, u.PasswordHash, now, now))
}

// FindByLogin matches login against the email or the username.
func (r *UserPostgres) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	if r.db == nil {
		return nil, repository.ErrStoreUnavailable
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $1 LIMIT 1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, login))
}

// FindByID returns sql.ErrNoRows when the user does not exist.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	if r.db == nil {
		return nil, repository.ErrStoreUnavailable
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// ExistsByEmailOrUsername reports whether either identifier is taken.
func (r *UserPostgres) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	if r.db == nil {
		return false, repository.ErrStoreUnavailable
	}
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, email, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
