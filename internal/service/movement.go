package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"financeapi/internal/ledger"
	"financeapi/internal/logger"
	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// MovementInput is the create/update body of a movement.
type MovementInput struct {
	Date                 string           `json:"date"`
	Type                 string           `json:"type"`
	Description          string           `json:"description"`
	Amount               *decimal.Decimal `json:"amount"`
	Currency             string           `json:"currency"`
	Category             string           `json:"category"`
	AccountID            *string          `json:"account_id"`
	DestinationAccountID *string          `json:"destination_account_id"`
	CardID               *string          `json:"card_id"`
	FundID               *string          `json:"fund_id"`
	SubscriptionID       *string          `json:"subscription_id"`
	Notes                *string          `json:"notes"`
}

type MovementService = CRUDService[model.Movement, MovementInput]

// movementService keeps account balances in step with movements. Every write runs in
// one transaction covering the movement row and the balances it touches.
type movementService struct {
	crudService[model.Movement, MovementInput]
	accounts repository.AccountRepository
	tx       repository.TxManager
}

func NewMovementService(
	repo repository.MovementRepository,
	accounts repository.AccountRepository,
	cards repository.CardRepository,
	funds repository.FundRepository,
	subs repository.SubscriptionRepository,
	tx repository.TxManager,
) MovementService {
	s := &movementService{accounts: accounts, tx: tx}
	s.crudService = crudService[model.Movement, MovementInput]{
		repo: repo,
		build: func(ctx context.Context, userID string, _ *model.Movement, in MovementInput) (*model.Movement, error) {
			m, v := parseMovement(in)
			if err := checkRef[model.Card](ctx, cards, userID, m.CardID, "card_id", v); err != nil {
				return nil, err
			}
			if err := checkRef[model.Fund](ctx, funds, userID, m.FundID, "fund_id", v); err != nil {
				return nil, err
			}
			if err := checkRef[model.Subscription](ctx, subs, userID, m.SubscriptionID, "subscription_id", v); err != nil {
				return nil, err
			}
			if err := v.Err(); err != nil {
				return nil, err
			}
			return m, nil
		},
		meta: func(m *model.Movement) *model.Meta { return &m.Meta },
	}
	return s
}

func parseMovement(in MovementInput) (*model.Movement, *validation.Validator) {
	v := validation.New()
	m := &model.Movement{
		Date:                 v.Date("date", in.Date),
		Type:                 model.MovementType(in.Type),
		Description:          v.Required("description", in.Description, 200),
		Amount:               v.Amount("amount", in.Amount, true),
		Currency:             v.Currency("currency", in.Currency),
		Category:             model.MovementCategory(orDefault(in.Category, string(model.CategoryOther))),
		AccountID:            v.Ref(in.AccountID),
		DestinationAccountID: v.Ref(in.DestinationAccountID),
		CardID:               v.Ref(in.CardID),
		FundID:               v.Ref(in.FundID),
		SubscriptionID:       v.Ref(in.SubscriptionID),
		Notes:                v.Optional("notes", in.Notes, 1000),
	}
	v.Enum("type", in.Type, m.Type.Valid())
	v.Enum("category", string(m.Category), m.Category.Valid())

	switch m.Type {
	case model.MovementTransfer:
		v.Check(m.AccountID != nil, "account_id", "is required for transfers")
		v.Check(m.DestinationAccountID != nil, "destination_account_id", "is required for transfers")
		if m.AccountID != nil && m.DestinationAccountID != nil {
			v.Check(*m.AccountID != *m.DestinationAccountID, "destination_account_id", "must differ from account_id")
		}
	case model.MovementIncome, model.MovementExpense:
		v.Check(m.AccountID != nil, "account_id", "is required")
		v.Check(m.DestinationAccountID == nil, "destination_account_id", "is only allowed for transfers")
	}
	return m, v
}

// Save applies the new movement's balance effect, after reverting the effect of the
// movement it replaces, and stores it, all in one transaction.
func (s *movementService) Save(ctx context.Context, userID, id string, in MovementInput) (*model.Movement, error) {
	var out *model.Movement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		prev, err := s.existing(ctx, userID, id)
		if err != nil {
			return err
		}
		next, err := s.build(ctx, userID, prev, in)
		if err != nil {
			return err
		}
		next.ID = id
		if err := s.rebalance(ctx, userID, prev, next); err != nil {
			return err
		}
		out, err = s.repo.Upsert(ctx, userID, next)
		return notFound(err)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete reverts the movement's balance effect and removes it. Unknown ids are a no-op.
func (s *movementService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		prev, err := s.repo.GetByID(ctx, userID, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.rebalance(ctx, userID, prev, nil); err != nil {
			return err
		}
		return s.repo.Delete(ctx, userID, id)
	})
}

// rebalance locks every account prev or next touches, in id order, then reverts prev
// and applies next. Only accounts whose balance changed are written back.
func (s *movementService) rebalance(ctx context.Context, userID string, prev, next *model.Movement) error {
	ids := accountIDs(prev, next)
	balances := ledger.Balances{}
	accounts := make(map[string]*model.BankAccount, len(ids))
	for _, id := range ids {
		acc, err := s.accounts.GetByIDForUpdate(ctx, userID, id)
		if errors.Is(err, sql.ErrNoRows) {
			if next != nil && references(next, id) {
				return validation.Errors{accountField(next, id): "does not exist"}
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("lock account %s: %w", id, err)
		}
		accounts[id] = acc
		balances[id] = acc.Balance
	}

	// Deleted accounts keep no balance; the sides that remain are still reverted.
	if prev != nil {
		skipped, err := ledger.RevertAvailable(balances, *prev)
		if err != nil {
			return err
		}
		if len(skipped) > 0 {
			logger.FromContext(ctx).Warn("skipping revert on missing accounts", "movement_id", prev.ID, "account_ids", skipped)
		}
	}
	if next != nil {
		if err := ledger.Apply(balances, *next); err != nil {
			return err
		}
	}

	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok || acc.Balance.Equal(balances[id]) {
			continue
		}
		acc.Balance = balances[id]
		if _, err := s.accounts.Upsert(ctx, userID, acc); err != nil {
			return fmt.Errorf("update account %s: %w", id, err)
		}
	}
	return nil
}

func accountIDs(ms ...*model.Movement) []string {
	seen := map[string]struct{}{}
	for _, m := range ms {
		if m == nil {
			continue
		}
		for _, id := range []*string{m.AccountID, m.DestinationAccountID} {
			if id != nil {
				seen[*id] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func references(m *model.Movement, id string) bool {
	return (m.AccountID != nil && *m.AccountID == id) || (m.DestinationAccountID != nil && *m.DestinationAccountID == id)
}

func accountField(m *model.Movement, id string) string {
	if m.AccountID != nil && *m.AccountID == id {
		return "account_id"
	}
	return "destination_account_id"
}
