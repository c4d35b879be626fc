// Package repository defines the persistence contracts of the application.
// Implementations live in subpackages (postgres) and hold no business logic.
package repository

import (
	"context"
	"errors"

	"financeapi/internal/model"
)

var (
	// ErrStoreUnavailable is returned when the store has no database handle.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrUnknownIndex is returned for lookups on an index the collection does not define.
	ErrUnknownIndex = errors.New("unknown index")
)

// PageQuery holds limit/offset pagination parameters and an optional
// secondary-index equality filter.
type PageQuery struct {
	Limit  int
	Offset int
	Index  string
	Value  string
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

// RecordStore is keyed persistence for one collection, scoped by user.
type RecordStore[T any] interface {
	// Upsert inserts rec or replaces the stored record with the same id. The original
	// created_at is preserved and updated_at is stamped. An empty id is generated.
	Upsert(ctx context.Context, userID string, rec *T) (*T, error)

	// GetAll returns every record of the user.
	GetAll(ctx context.Context, userID string) ([]T, error)

	// List returns one page of records and the total matching count.
	List(ctx context.Context, userID string, pq PageQuery) (*PageResult[T], error)

	// GetByID returns sql.ErrNoRows when the record does not exist.
	GetByID(ctx context.Context, userID, id string) (*T, error)

	// FindByIndex returns the records whose index equals value.
	FindByIndex(ctx context.Context, userID, index, value string) ([]T, error)

	// Delete removes a record. Unknown ids are not an error.
	Delete(ctx context.Context, userID, id string) error

	// Clear removes every record of the user in this collection.
	Clear(ctx context.Context, userID string) error
}

// AccountRepository can lock an account while its balance is being changed.
type AccountRepository interface {
	RecordStore[model.BankAccount]
	GetByIDForUpdate(ctx context.Context, userID, id string) (*model.BankAccount, error)
}

type (
	CardRepository         = RecordStore[model.Card]
	DebtRepository         = RecordStore[model.Debt]
	SubscriptionRepository = RecordStore[model.Subscription]
	MovementRepository     = RecordStore[model.Movement]
	FundRepository         = RecordStore[model.Fund]
	UserConfigRepository   = RecordStore[model.UserConfig]
)

// UserRepository stores account holders. Lookups expect normalized (lower-cased) input.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
}

// TxManager runs fn in a transaction. Every store call made with the context passed
// to fn joins it; nested calls reuse the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
