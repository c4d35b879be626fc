package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
	"financeapi/internal/repository"
	"financeapi/internal/validation"
)

// DebtInput is the create/update body of a debt. RemainingAmount defaults to
// TotalAmount on create and to the stored value on update.
type DebtInput struct {
	Creditor        string           `json:"creditor"`
	Description     *string          `json:"description"`
	TotalAmount     *decimal.Decimal `json:"total_amount"`
	RemainingAmount *decimal.Decimal `json:"remaining_amount"`
	Currency        string           `json:"currency"`
	DueDate         *string          `json:"due_date"`
	InterestRate    *decimal.Decimal `json:"interest_rate"`
	AccountID       *string          `json:"account_id"`
}

// PaymentInput is the body of a debt payment. When AccountID is set the payment
// is also recorded as an expense movement against that account.
type PaymentInput struct {
	Amount    *decimal.Decimal `json:"amount"`
	AccountID *string          `json:"account_id"`
	Date      *string          `json:"date"`
}

// PaymentResult is the debt after the payment and the movement it produced, if any.
type PaymentResult struct {
	Debt     *model.Debt     `json:"debt"`
	Movement *model.Movement `json:"movement,omitempty"`
}

type DebtService interface {
	CRUDService[model.Debt, DebtInput]
	RecordPayment(ctx context.Context, userID, id string, in PaymentInput) (*PaymentResult, error)
}

type debtService struct {
	crudService[model.Debt, DebtInput]
	movements MovementService
	tx        repository.TxManager
}

func NewDebtService(repo repository.DebtRepository, accounts repository.AccountRepository, movements MovementService, tx repository.TxManager) DebtService {
	s := &debtService{movements: movements, tx: tx}
	s.crudService = crudService[model.Debt, DebtInput]{
		repo: repo,
		build: func(ctx context.Context, userID string, existing *model.Debt, in DebtInput) (*model.Debt, error) {
			v := validation.New()
			d := &model.Debt{
				Creditor:     v.Required("creditor", in.Creditor, 100),
				Description:  v.Optional("description", in.Description, 500),
				TotalAmount:  v.Amount("total_amount", in.TotalAmount, true),
				Currency:     v.Currency("currency", in.Currency),
				DueDate:      v.OptionalDate("due_date", in.DueDate),
				InterestRate: v.Range("interest_rate", in.InterestRate, 0, 100),
				AccountID:    v.Ref(in.AccountID),
			}
			switch {
			case in.RemainingAmount != nil:
				d.RemainingAmount = v.Amount("remaining_amount", in.RemainingAmount, false)
			case existing != nil:
				d.RemainingAmount = existing.RemainingAmount
			default:
				d.RemainingAmount = d.TotalAmount
			}
			if existing != nil {
				d.LastPaymentDate = existing.LastPaymentDate
			}
			v.Check(d.RemainingAmount.LessThanOrEqual(d.TotalAmount), "remaining_amount", "must not exceed total_amount")
			if err := checkRef[model.BankAccount](ctx, accounts, userID, d.AccountID, "account_id", v); err != nil {
				return nil, err
			}
			if err := v.Err(); err != nil {
				return nil, err
			}
			d.NormalizeStatus(timeNow())
			return d, nil
		},
		meta: func(d *model.Debt) *model.Meta { return &d.Meta },
	}
	return s
}

// Get returns the debt with its status derived from today's date.
func (s *debtService) Get(ctx context.Context, userID, id string) (*model.Debt, error) {
	d, err := s.crudService.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	d.NormalizeStatus(timeNow())
	return d, nil
}

func (s *debtService) List(ctx context.Context, userID string, q ListQuery) (*ListResult[model.Debt], error) {
	res, err := s.crudService.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}
	today := timeNow()
	for i := range res.Items {
		res.Items[i].NormalizeStatus(today)
	}
	return res, nil
}

// RecordPayment lowers the remaining amount, never below zero, and stamps the payment
// date. The debt and the optional expense movement are written in one transaction.
func (s *debtService) RecordPayment(ctx context.Context, userID, id string, in PaymentInput) (*PaymentResult, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	v := validation.New()
	amount := v.Amount("amount", in.Amount, true)
	date := model.NewDate(timeNow())
	if d := v.OptionalDate("date", in.Date); d != nil {
		date = *d
	}
	accountID := v.Ref(in.AccountID)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var res PaymentResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		debt, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return notFound(err)
		}
		if debt.RemainingAmount.Sign() <= 0 {
			return validation.Errors{"amount": "debt is already paid"}
		}

		paid := decimal.Min(amount, debt.RemainingAmount)
		debt.RemainingAmount = debt.RemainingAmount.Sub(paid)
		debt.LastPaymentDate = &date
		debt.NormalizeStatus(timeNow())

		if accountID != nil {
			res.Movement, err = s.movements.Save(ctx, userID, "", MovementInput{
				Date:        date.String(),
				Type:        string(model.MovementExpense),
				Description: fmt.Sprintf("Payment to %s", debt.Creditor),
				Amount:      &paid,
				Currency:    string(debt.Currency),
				Category:    string(model.CategoryDebt),
				AccountID:   accountID,
			})
			if err != nil {
				return err
			}
		}

		res.Debt, err = s.repo.Upsert(ctx, userID, debt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
