package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription is a recurring charge against a card or an account.
type Subscription struct {
	Meta
	Name           string               `json:"name"`
	Provider       string               `json:"provider"`
	Amount         decimal.Decimal      `json:"amount"`
	Currency       Currency             `json:"currency"`
	BillingCycle   BillingCycle         `json:"billing_cycle"`
	BillingDay     int                  `json:"billing_day"`
	NextChargeDate Date                 `json:"next_charge_date"`
	Status         SubscriptionStatus   `json:"status"`
	Category       SubscriptionCategory `json:"category"`
	CardID         *string              `json:"card_id,omitempty"`
	BankAccountID  *string              `json:"bank_account_id,omitempty"`
	Notes          *string              `json:"notes,omitempty"`
}

var (
	four   = decimal.NewFromInt(4)
	three  = decimal.NewFromInt(3)
	twelve = decimal.NewFromInt(12)
)

// MonthlyEquivalent converts the charge to a per-month amount.
func (s Subscription) MonthlyEquivalent() decimal.Decimal {
	switch s.BillingCycle {
	case CycleWeekly:
		return s.Amount.Mul(four)
	case CycleQuarterly:
		return s.Amount.Div(three)
	case CycleYearly:
		return s.Amount.Div(twelve)
	default:
		return s.Amount
	}
}

// NextChargeDate returns the first charge on or after today.
// Weekly subscriptions charge seven days out. Other cycles charge on billingDay,
// clamped to the length of the month.
func NextChargeDate(today time.Time, billingDay int, cycle BillingCycle) Date {
	day := NewDate(today)
	if cycle == CycleWeekly {
		return Date{day.AddDate(0, 0, 7)}
	}
	y, m, _ := day.Date()
	candidate := dayInMonth(y, m, billingDay)
	if candidate.Before(day.Time) {
		candidate = dayInMonth(y, m+1, billingDay)
	}
	return Date{candidate}
}

func dayInMonth(y int, m time.Month, d int) time.Time {
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}
