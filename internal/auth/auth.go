// Package auth registers users, verifies credentials and issues session tokens.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"financeapi/internal/logger"
	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

var (
	ErrDuplicateUser      = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	MinPasswordLength = 8
	// bcrypt ignores input beyond 72 bytes.
	maxPasswordBytes = 72
	uniqueViolation  = "23505"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,}$`)

// RegisterInput is the registration request body.
type RegisterInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is an issued session token and its owner.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// Service is the authentication use case.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Authenticate(ctx context.Context, login, password string) (*Session, error)
	Verify(token string) (*Claims, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	EnsureUser(ctx context.Context, in RegisterInput) (bool, error)
}

type service struct {
	users  repository.UserRepository
	tokens *Tokens
	cost   int
}

// NewService wires the user store and token issuer. cost is the bcrypt work factor.
func NewService(users repository.UserRepository, tokens *Tokens, cost int) Service {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &service{users: users, tokens: tokens, cost: cost}
}

// NormalizeLogin trims and lower-cases an email or username.
func NormalizeLogin(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateRegistration checks and normalizes registration input.
func ValidateRegistration(in RegisterInput) (RegisterInput, error) {
	v := validation.New()
	v.Match("username", strings.TrimSpace(in.Username), usernamePattern,
		"must be at least 3 characters of letters, digits, '_', '.' or '-'")
	out := RegisterInput{
		Name:     v.Required("name", in.Name, 100),
		Username: NormalizeLogin(v.Required("username", in.Username, 50)),
		Email:    v.Email("email", in.Email),
		Password: in.Password,
	}
	switch {
	case in.Password == "":
		v.Fail("password", "is required")
	case utf8.RuneCountInString(in.Password) < MinPasswordLength:
		v.Fail("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	case len(in.Password) > maxPasswordBytes:
		v.Fail("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return out, v.Err()
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in, err := ValidateRegistration(in)
	if err != nil {
		return nil, err
	}
	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, &model.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	logger.FromContext(ctx).Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, login, password string) (*Session, error) {
	login = NormalizeLogin(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *service) Verify(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}

func (s *service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

// EnsureUser registers in unless its email or username is already taken.
// It reports whether a user was created.
func (s *service) EnsureUser(ctx context.Context, in RegisterInput) (bool, error) {
	if _, err := s.Register(ctx, in); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
