package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"financeapi/internal/model"
	"financeapi/internal/repository"
)

type MockRecordStore[T any] struct {
	mock.Mock
}

// Upsert also accepts a func(context.Context, string, *T) *T return value, which is
// called with the arguments; tests use it to echo the record back.
func (m *MockRecordStore[T]) Upsert(ctx context.Context, userID string, rec *T) (*T, error) {
	args := m.Called(ctx, userID, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, string, *T) *T); ok {
		return fn(ctx, userID, rec), args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRecordStore[T]) GetAll(ctx context.Context, userID string) ([]T, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRecordStore[T]) List(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[T], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockRecordStore[T]) GetByID(ctx context.Context, userID, id string) (*T, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRecordStore[T]) FindByIndex(ctx context.Context, userID, index, value string) ([]T, error) {
	args := m.Called(ctx, userID, index, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

func (m *MockRecordStore[T]) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockRecordStore[T]) Clear(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockAccountRepository struct {
	MockRecordStore[model.BankAccount]
}

func (m *MockAccountRepository) GetByIDForUpdate(ctx context.Context, userID, id string) (*model.BankAccount, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BankAccount), args.Error(1)
}

var (
	_ repository.AccountRepository    = (*MockAccountRepository)(nil)
	_ repository.MovementRepository   = (*MockRecordStore[model.Movement])(nil)
	_ repository.UserConfigRepository = (*MockRecordStore[model.UserConfig])(nil)
)
