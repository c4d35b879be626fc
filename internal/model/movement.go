package model

import "github.com/shopspring/decimal"

// Movement is a single recorded cash event. Transfers move Amount from AccountID
// to DestinationAccountID without currency conversion.
type Movement struct {
	Meta
	Date                 Date             `json:"date"`
	Type                 MovementType     `json:"type"`
	Description          string           `json:"description"`
	Amount               decimal.Decimal  `json:"amount"`
	Currency             Currency         `json:"currency"`
	Category             MovementCategory `json:"category"`
	AccountID            *string          `json:"account_id,omitempty"`
	DestinationAccountID *string          `json:"destination_account_id,omitempty"`
	CardID               *string          `json:"card_id,omitempty"`
	FundID               *string          `json:"fund_id,omitempty"`
	SubscriptionID       *string          `json:"subscription_id,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
}
