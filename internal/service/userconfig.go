package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// ConfigInput is the body of PUT /api/config. A nil Rule keeps the stored split.
type ConfigInput struct {
	MonthlySalary  *decimal.Decimal `json:"monthly_salary"`
	Payday         int              `json:"payday"`
	Currency       string           `json:"currency"`
	Rule           *model.Rule      `json:"rule"`
	SetupCompleted *bool            `json:"setup_completed"`
}

type UserConfigService interface {
	Get(ctx context.Context, userID string) (*model.UserConfig, error)
	Save(ctx context.Context, userID string, in ConfigInput) (*model.UserConfig, error)
}

type userConfigService struct {
	repo repository.UserConfigRepository
}

func NewUserConfigService(repo repository.UserConfigRepository) UserConfigService {
	return &userConfigService{repo: repo}
}

// Get returns the stored settings, or the defaults when the user never saved any.
func (s *userConfigService) Get(ctx context.Context, userID string) (*model.UserConfig, error) {
	cfg, err := s.repo.GetByID(ctx, userID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		def := model.DefaultUserConfig(userID)
		return &def, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *userConfigService) Save(ctx context.Context, userID string, in ConfigInput) (*model.UserConfig, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	cfg := &model.UserConfig{
		Meta:           model.Meta{ID: userID},
		MonthlySalary:  v.Amount("monthly_salary", in.MonthlySalary, false),
		Payday:         v.Day("payday", in.Payday),
		Currency:       v.Currency("currency", in.Currency),
		Rule:           current.Rule,
		SetupCompleted: current.SetupCompleted,
	}
	if in.Rule != nil {
		cfg.Rule = *in.Rule
		v.Check(cfg.Rule.Valid(), "rule", "needs, savings and wants must be non-negative and sum to 100")
	}
	if in.SetupCompleted != nil {
		cfg.SetupCompleted = *in.SetupCompleted
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, userID, cfg)
}
