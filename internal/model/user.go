package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account holder. Email and Username are stored lower-cased.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Rule is the needs/savings/wants percentage split. The parts sum to 100.
type Rule struct {
	Needs   int `json:"needs"`
	Savings int `json:"savings"`
	Wants   int `json:"wants"`
}

// DefaultRule is the classic 50/20/30 split.
var DefaultRule = Rule{Needs: 50, Savings: 20, Wants: 30}

func (r Rule) Valid() bool {
	if r.Needs < 0 || r.Savings < 0 || r.Wants < 0 {
		return false
	}
	return r.Needs+r.Savings+r.Wants == 100
}

// UserConfig is the per-user settings singleton. Its ID equals the user id.
type UserConfig struct {
	Meta
	MonthlySalary  decimal.Decimal `json:"monthly_salary"`
	Payday         int             `json:"payday"`
	Currency       Currency        `json:"currency"`
	Rule           Rule            `json:"rule"`
	SetupCompleted bool            `json:"setup_completed"`
}

// DefaultUserConfig is returned for users that never saved settings.
func DefaultUserConfig(userID string) UserConfig {
	return UserConfig{
		Meta:          Meta{ID: userID, UserID: userID},
		MonthlySalary: decimal.Zero,
		Payday:        1,
		Currency:      DefaultCurrency,
		Rule:          DefaultRule,
	}
}
