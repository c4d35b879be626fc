package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"financeapi/internal/model"
	"financeapi/internal/repository/mocks"
	"financeapi/internal/validation"
)

func newTestService(users *mocks.MockUserRepository) Service {
	return NewService(users, NewTokens("test-secret", time.Hour), bcrypt.MinCost)
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"short username", RegisterInput{Name: "A", Username: "ab", Email: "a@b.co", Password: "password1"}, "username"},
		{"bad username chars", RegisterInput{Name: "A", Username: "ab cd", Email: "a@b.co", Password: "password1"}, "username"},
		{"markup in username", RegisterInput{Name: "A", Username: "bo<i>b</i>", Email: "a@b.co", Password: "password1"}, "username"},
		{"short password", RegisterInput{Name: "A", Username: "abc", Email: "a@b.co", Password: "1234567"}, "password"},
		{"short multibyte password", RegisterInput{Name: "A", Username: "abc", Email: "a@b.co", Password: "ééééééé"}, "password"},
		{"long password", RegisterInput{Name: "A", Username: "abc", Email: "a@b.co", Password: strings.Repeat("x", 73)}, "password"},
		{"bad email", RegisterInput{Name: "A", Username: "abc", Email: "nope", Password: "password1"}, "email"},
		{"missing name", RegisterInput{Username: "abc", Email: "a@b.co", Password: "password1"}, "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRegistration(tt.in)
			require.Error(t, err)
			var fields validation.Errors
			require.True(t, errors.As(err, &fields))
			assert.Contains(t, fields, tt.field)
		})
	}

	out, err := ValidateRegistration(RegisterInput{Name: " Ada ", Username: "Ada.L", Email: "ADA@Example.com", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, "ada.l", out.Username)
	assert.Equal(t, "ada@example.com", out.Email)
	assert.Equal(t, "Ada", out.Name)

	_, err = ValidateRegistration(RegisterInput{Name: "A", Username: " abc ", Email: "a@b.co", Password: "éééééééé"})
	assert.NoError(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	in := RegisterInput{Name: "Ada", Username: "Ada", Email: "ada@example.com", Password: "correct horse"}

	t.Run("success hashes password", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("ExistsByEmailOrUsername", ctx, "ada@example.com", "ada").Return(false, nil)
		users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Username == "ada" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")) == nil
		})).Return(&model.User{ID: "u1", Username: "ada"}, nil)

		u, err := newTestService(users).Register(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		users.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("ExistsByEmailOrUsername", ctx, "ada@example.com", "ada").Return(true, nil)

		_, err := newTestService(users).Register(ctx, in)

		assert.ErrorIs(t, err, ErrDuplicateUser)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique violation race", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("ExistsByEmailOrUsername", ctx, "ada@example.com", "ada").Return(false, nil)
		users.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})

		_, err := newTestService(users).Register(ctx, in)

		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("invalid input never reaches store", func(t *testing.T) {
		users := new(mocks.MockUserRepository)

		_, err := newTestService(users).Register(ctx, RegisterInput{Name: "x", Username: "x", Email: "x@y.z", Password: "short"})

		assert.ErrorIs(t, err, validation.ErrValidationFailed)
		users.AssertExpectations(t)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	stored := &model.User{ID: "u1", Username: "ada", Email: "ada@example.com", PasswordHash: string(hash)}

	t.Run("by email case-insensitively", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByLogin", ctx, "ada@example.com").Return(stored, nil)
		svc := newTestService(users)

		sess, err := svc.Authenticate(ctx, "  ADA@example.com ", "s3cret-pass")

		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		claims, err := svc.Verify(sess.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID())
		assert.Equal(t, "ada", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByLogin", ctx, "ada").Return(stored, nil)

		_, err := newTestService(users).Authenticate(ctx, "ada", "nope-nope")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(mocks.MockUserRepository)
		users.On("FindByLogin", ctx, "ghost").Return(nil, sql.ErrNoRows)

		_, err := newTestService(users).Authenticate(ctx, "ghost", "whatever1")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestEnsureUser(t *testing.T) {
	ctx := context.Background()
	users := new(mocks.MockUserRepository)
	users.On("ExistsByEmailOrUsername", ctx, "admin@example.com", "admin").Return(true, nil)

	created, err := newTestService(users).EnsureUser(ctx, RegisterInput{
		Name: "Administrator", Username: "admin", Email: "admin@example.com", Password: "changeMe123!",
	})

	require.NoError(t, err)
	assert.False(t, created)
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return base }

	raw, exp, err := tokens.Issue("u1", "ada")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), exp)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())

	tokens.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokens("other-secret", time.Hour)
	other.now = func() time.Time { return base }
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
