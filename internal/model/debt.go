package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Debt is money owed to a creditor. RemainingAmount only goes down under payments.
type Debt struct {
	Meta
	Creditor        string           `json:"creditor"`
	Description     *string          `json:"description,omitempty"`
	TotalAmount     decimal.Decimal  `json:"total_amount"`
	RemainingAmount decimal.Decimal  `json:"remaining_amount"`
	Currency        Currency         `json:"currency"`
	DueDate         *Date            `json:"due_date,omitempty"`
	InterestRate    *decimal.Decimal `json:"interest_rate,omitempty"`
	AccountID       *string          `json:"account_id,omitempty"`
	Status          DebtStatus       `json:"status"`
	LastPaymentDate *Date            `json:"last_payment_date,omitempty"`
}

// NormalizeStatus derives the status from the amounts and due date.
// A settled debt is paid; an unpaid one past its due date is overdue.
func (d *Debt) NormalizeStatus(today time.Time) {
	switch {
	case d.RemainingAmount.Sign() <= 0:
		d.Status = DebtPaid
	case d.DueDate != nil && d.DueDate.Before(NewDate(today).Time):
		d.Status = DebtOverdue
	default:
		d.Status = DebtActive
	}
}

// Paid returns TotalAmount - RemainingAmount.
func (d Debt) Paid() decimal.Decimal {
	return d.TotalAmount.Sub(d.RemainingAmount)
}
