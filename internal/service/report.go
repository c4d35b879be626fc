package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"financeapi/internal/report"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// ReportService recomputes the dashboard and report views from the full collections
// on every call.
type ReportService interface {
	Dashboard(ctx context.Context, userID string) (*report.Dashboard, error)
	Report(ctx context.Context, userID string, months int) (*report.Report, error)
}

type reportService struct {
	config        UserConfigService
	accounts      repository.AccountRepository
	debts         repository.DebtRepository
	subscriptions repository.SubscriptionRepository
	movements     repository.MovementRepository
	funds         repository.FundRepository
}

func NewReportService(
	config UserConfigService,
	accounts repository.AccountRepository,
	debts repository.DebtRepository,
	subscriptions repository.SubscriptionRepository,
	movements repository.MovementRepository,
	funds repository.FundRepository,
) ReportService {
	return &reportService{
		config:        config,
		accounts:      accounts,
		debts:         debts,
		subscriptions: subscriptions,
		movements:     movements,
		funds:         funds,
	}
}

func (s *reportService) Dashboard(ctx context.Context, userID string) (*report.Dashboard, error) {
	in, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := report.BuildDashboard(*in)
	return &d, nil
}

// Report covers the last months months. Zero selects report.DefaultMonths.
func (s *reportService) Report(ctx context.Context, userID string, months int) (*report.Report, error) {
	if months == 0 {
		months = report.DefaultMonths
	}
	if months < 1 || months > report.MaxMonths {
		return nil, validation.Errors{"months": "must be between 1 and 24"}
	}
	in, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	r := report.BuildReport(*in, months)
	return &r, nil
}

func (s *reportService) load(ctx context.Context, userID string) (*report.Input, error) {
	in := &report.Input{Now: timeNow()}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := s.config.Get(gctx, userID)
		if err != nil {
			return err
		}
		in.Config = *cfg
		return nil
	})
	g.Go(func() (err error) {
		in.Accounts, err = s.accounts.GetAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		in.Debts, err = s.debts.GetAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		in.Subscriptions, err = s.subscriptions.GetAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		in.Movements, err = s.movements.GetAll(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		in.Funds, err = s.funds.GetAll(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range in.Debts {
		in.Debts[i].NormalizeStatus(in.Now)
	}
	return in, nil
}
