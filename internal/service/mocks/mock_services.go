package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"financeapi/internal/model"
	"financeapi/internal/report"
	"financeapi/internal/service"
	"financeapi/internal/storage"
)

type MockUserConfigService struct {
	mock.Mock
}

func (m *MockUserConfigService) Get(ctx context.Context, userID string) (*model.UserConfig, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserConfig), args.Error(1)
}

func (m *MockUserConfigService) Save(ctx context.Context, userID string, in service.ConfigInput) (*model.UserConfig, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserConfig), args.Error(1)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Dashboard(ctx context.Context, userID string) (*report.Dashboard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Dashboard), args.Error(1)
}

func (m *MockReportService) Report(ctx context.Context, userID string, months int) (*report.Report, error) {
	args := m.Called(ctx, userID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.Report), args.Error(1)
}

type MockDataService struct {
	mock.Mock
}

func (m *MockDataService) Export(ctx context.Context, userID string) (*service.ExportResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockDataService) Download(ctx context.Context, userID, name string) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockDataService) Reset(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

var (
	_ service.UserConfigService = (*MockUserConfigService)(nil)
	_ service.ReportService     = (*MockReportService)(nil)
	_ service.DataService       = (*MockDataService)(nil)
)
