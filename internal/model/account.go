package model

import "github.com/shopspring/decimal"

// BankAccount is a place where money is held. Balance changes with movements.
type BankAccount struct {
	Meta
	Name        string          `json:"name"`
	Institution string          `json:"institution"`
	Alias       *string         `json:"alias,omitempty"`
	Type        AccountType     `json:"type"`
	Currency    Currency        `json:"currency"`
	Balance     decimal.Decimal `json:"balance"`
	AutopayDay  *int            `json:"autopay_day,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

// Card is a credit or debit card, optionally linked to the account that pays it.
type Card struct {
	Meta
	Name          string          `json:"name"`
	Issuer        string          `json:"issuer"`
	LastFour      *string         `json:"last_four,omitempty"`
	CreditLimit   decimal.Decimal `json:"credit_limit"`
	Currency      Currency        `json:"currency"`
	ClosingDay    int             `json:"closing_day"`
	PaymentDay    int             `json:"payment_day"`
	BankAccountID *string         `json:"bank_account_id,omitempty"`
}
