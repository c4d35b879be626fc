package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"financeapi/internal/marketdata"
	"financeapi/internal/model"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Quote(ctx context.Context, kind marketdata.Kind, symbol string, currency model.Currency) (*marketdata.Quote, error) {
	args := m.Called(ctx, kind, symbol, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketdata.Quote), args.Error(1)
}

func (m *MockProvider) Rate(ctx context.Context, from, to model.Currency) (*marketdata.Rate, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketdata.Rate), args.Error(1)
}

var _ marketdata.Provider = (*MockProvider)(nil)
