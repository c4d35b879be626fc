package service

import (
	"context"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// SubscriptionInput is the create/update body of a subscription.
// NextChargeDate is computed from BillingDay and BillingCycle when omitted.
type SubscriptionInput struct {
	Name           string           `json:"name"`
	Provider       string           `json:"provider"`
	Amount         *decimal.Decimal `json:"amount"`
	Currency       string           `json:"currency"`
	BillingCycle   string           `json:"billing_cycle"`
	BillingDay     int              `json:"billing_day"`
	NextChargeDate *string          `json:"next_charge_date"`
	Status         string           `json:"status"`
	Category       string           `json:"category"`
	CardID         *string          `json:"card_id"`
	BankAccountID  *string          `json:"bank_account_id"`
	Notes          *string          `json:"notes"`
}

type SubscriptionService = CRUDService[model.Subscription, SubscriptionInput]

func NewSubscriptionService(repo repository.SubscriptionRepository, cards repository.CardRepository, accounts repository.AccountRepository) SubscriptionService {
	return &crudService[model.Subscription, SubscriptionInput]{
		repo: repo,
		build: func(ctx context.Context, userID string, _ *model.Subscription, in SubscriptionInput) (*model.Subscription, error) {
			v := validation.New()
			s := &model.Subscription{
				Name:          v.Required("name", in.Name, 100),
				Provider:      v.Required("provider", in.Provider, 100),
				Amount:        v.Amount("amount", in.Amount, true),
				Currency:      v.Currency("currency", in.Currency),
				BillingCycle:  model.BillingCycle(in.BillingCycle),
				BillingDay:    v.Day("billing_day", in.BillingDay),
				Status:        model.SubscriptionStatus(orDefault(in.Status, string(model.SubscriptionActive))),
				Category:      model.SubscriptionCategory(orDefault(in.Category, string(model.SubCategoryOther))),
				CardID:        v.Ref(in.CardID),
				BankAccountID: v.Ref(in.BankAccountID),
				Notes:         v.Optional("notes", in.Notes, 1000),
			}
			v.Enum("billing_cycle", in.BillingCycle, s.BillingCycle.Valid())
			v.Enum("status", string(s.Status), s.Status.Valid())
			v.Enum("category", string(s.Category), s.Category.Valid())
			if next := v.OptionalDate("next_charge_date", in.NextChargeDate); next != nil {
				s.NextChargeDate = *next
			} else if s.BillingCycle.Valid() && s.BillingDay >= 1 && s.BillingDay <= 31 {
				s.NextChargeDate = model.NextChargeDate(timeNow(), s.BillingDay, s.BillingCycle)
			}
			if err := checkRef[model.Card](ctx, cards, userID, s.CardID, "card_id", v); err != nil {
				return nil, err
			}
			if err := checkRef[model.BankAccount](ctx, accounts, userID, s.BankAccountID, "bank_account_id", v); err != nil {
				return nil, err
			}
			if err := v.Err(); err != nil {
				return nil, err
			}
			return s, nil
		},
		meta: func(s *model.Subscription) *model.Meta { return &s.Meta },
	}
}
