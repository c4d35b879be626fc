package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fund is a savings or investment goal, optionally made of priced positions.
type Fund struct {
	Meta
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Type          FundType        `json:"type"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Currency      Currency        `json:"currency"`
	TargetDate    *Date           `json:"target_date,omitempty"`
	Status        FundStatus      `json:"status"`
	AutoSync      bool            `json:"auto_sync"`
	Positions     Positions       `json:"positions"`
}

// Position is a holding inside a fund.
type Position struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Quantity       decimal.Decimal `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
	Currency       Currency        `json:"currency"`
	Location       string          `json:"location"`
	InvestmentType InvestmentType  `json:"investment_type"`
	PriceSource    PriceSource     `json:"price_source"`
	LastUpdated    *time.Time      `json:"last_updated,omitempty"`
}

// MarketValue is Quantity * Price.
func (p Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.Price)
}

// Positions is stored as a JSONB array.
type Positions []Position

// Total sums the value of every position.
func (ps Positions) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range ps {
		total = total.Add(p.MarketValue())
	}
	return total
}

func (ps Positions) Value() (driver.Value, error) {
	if ps == nil {
		ps = Positions{}
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ps *Positions) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*ps = Positions{}
		return nil
	default:
		return fmt.Errorf("model: cannot scan %T into Positions", src)
	}
	out := Positions{}
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*ps = out
	return nil
}

// SyncCurrentAmount recomputes CurrentAmount from the positions, when there are any.
func (f *Fund) SyncCurrentAmount() {
	if len(f.Positions) > 0 {
		f.CurrentAmount = f.Positions.Total()
	}
}

// Progress is CurrentAmount / TargetAmount, capped at 1. A zero target yields 0.
func (f Fund) Progress() decimal.Decimal {
	if f.TargetAmount.Sign() <= 0 {
		return decimal.Zero
	}
	p := f.CurrentAmount.Div(f.TargetAmount)
	if p.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}
