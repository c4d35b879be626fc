package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"financeapi/internal/model"
	"financeapi/internal/service"
)

type MockCRUDService[T any, In any] struct {
	mock.Mock
}

func (m *MockCRUDService[T, In]) List(ctx context.Context, userID string, q service.ListQuery) (*service.ListResult[T], error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[T]), args.Error(1)
}

func (m *MockCRUDService[T, In]) Get(ctx context.Context, userID, id string) (*T, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUDService[T, In]) Save(ctx context.Context, userID, id string, in In) (*T, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockCRUDService[T, In]) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockDebtService struct {
	MockCRUDService[model.Debt, service.DebtInput]
}

func (m *MockDebtService) RecordPayment(ctx context.Context, userID, id string, in service.PaymentInput) (*service.PaymentResult, error) {
	args := m.Called(ctx, userID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentResult), args.Error(1)
}

type MockFundService struct {
	MockCRUDService[model.Fund, service.FundInput]
}

func (m *MockFundService) RefreshPrices(ctx context.Context, userID, id string) (*model.Fund, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fund), args.Error(1)
}

var (
	_ service.AccountService  = (*MockCRUDService[model.BankAccount, service.AccountInput])(nil)
	_ service.MovementService = (*MockCRUDService[model.Movement, service.MovementInput])(nil)
	_ service.DebtService     = (*MockDebtService)(nil)
	_ service.FundService     = (*MockFundService)(nil)
)
