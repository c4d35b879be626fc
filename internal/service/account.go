package service

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// AccountInput is the create/update body of a bank account.
type AccountInput struct {
	Name        string           `json:"name"`
	Institution string           `json:"institution"`
	Alias       *string          `json:"alias"`
	Type        string           `json:"type"`
	Currency    string           `json:"currency"`
	Balance     *decimal.Decimal `json:"balance"`
	AutopayDay  *int             `json:"autopay_day"`
	Notes       *string          `json:"notes"`
}

type AccountService = CRUDService[model.BankAccount, AccountInput]

func NewAccountService(repo repository.AccountRepository) AccountService {
	return &crudService[model.BankAccount, AccountInput]{
		repo:  repo,
		build: buildAccount,
		meta:  func(a *model.BankAccount) *model.Meta { return &a.Meta },
	}
}

// buildAccount keeps the stored balance on update when none is given, since movements
// have been applied to it.
func buildAccount(_ context.Context, _ string, existing *model.BankAccount, in AccountInput) (*model.BankAccount, error) {
	v := validation.New()
	a := &model.BankAccount{
		Name:        v.Required("name", in.Name, 100),
		Institution: v.Required("institution", in.Institution, 100),
		Alias:       v.Optional("alias", in.Alias, 100),
		Type:        model.AccountType(in.Type),
		Currency:    v.Currency("currency", in.Currency),
		Balance:     decimal.Zero,
		AutopayDay:  v.OptionalDay("autopay_day", in.AutopayDay),
		Notes:       v.Optional("notes", in.Notes, 1000),
	}
	v.Enum("type", in.Type, a.Type.Valid())
	switch {
	case in.Balance != nil:
		a.Balance = *in.Balance
	case existing != nil:
		a.Balance = existing.Balance
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return a, nil
}

// CardInput is the create/update body of a card.
type CardInput struct {
	Name          string           `json:"name"`
	Issuer        string           `json:"issuer"`
	LastFour      *string          `json:"last_four"`
	CreditLimit   *decimal.Decimal `json:"credit_limit"`
	Currency      string           `json:"currency"`
	ClosingDay    int              `json:"closing_day"`
	PaymentDay    int              `json:"payment_day"`
	BankAccountID *string          `json:"bank_account_id"`
}

type CardService = CRUDService[model.Card, CardInput]

var lastFourPattern = regexp.MustCompile(`^\d{4}$`)

func NewCardService(repo repository.CardRepository, accounts repository.AccountRepository) CardService {
	return &crudService[model.Card, CardInput]{
		repo: repo,
		build: func(ctx context.Context, userID string, _ *model.Card, in CardInput) (*model.Card, error) {
			v := validation.New()
			c := &model.Card{
				Name:          v.Required("name", in.Name, 100),
				Issuer:        v.Required("issuer", in.Issuer, 100),
				LastFour:      v.Optional("last_four", in.LastFour, 4),
				Currency:      v.Currency("currency", in.Currency),
				ClosingDay:    v.Day("closing_day", in.ClosingDay),
				PaymentDay:    v.Day("payment_day", in.PaymentDay),
				BankAccountID: v.Ref(in.BankAccountID),
				CreditLimit:   decimal.Zero,
			}
			if c.LastFour != nil {
				v.Match("last_four", *c.LastFour, lastFourPattern, "must be exactly four digits")
			}
			if in.CreditLimit != nil {
				c.CreditLimit = v.Amount("credit_limit", in.CreditLimit, false)
			}
			if err := checkRef[model.BankAccount](ctx, accounts, userID, c.BankAccountID, "bank_account_id", v); err != nil {
				return nil, err
			}
			if err := v.Err(); err != nil {
				return nil, err
			}
			return c, nil
		},
		meta: func(c *model.Card) *model.Meta { return &c.Meta },
	}
}
