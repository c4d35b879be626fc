package model

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-4217 style code. Crypto assets use their ticker.
type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyBRL Currency = "BRL"
	CurrencyCLP Currency = "CLP"
	CurrencyCOP Currency = "COP"
	CurrencyBTC Currency = "BTC"
	CurrencyETH Currency = "ETH"
)

// DefaultCurrency is used for users that have not completed setup.
const DefaultCurrency = CurrencyARS

// cryptoFraction is the display precision of currencies go-money does not know.
const cryptoFraction = 8

func (c Currency) Valid() bool {
	switch c {
	case CurrencyARS, CurrencyUSD, CurrencyEUR, CurrencyBRL, CurrencyCLP, CurrencyCOP, CurrencyBTC, CurrencyETH:
		return true
	}
	return false
}

// Format renders amount for display, e.g. "$1,234.50" for USD.
func (c Currency) Format(amount decimal.Decimal) string {
	cur := money.GetCurrency(string(c))
	if cur == nil {
		return amount.StringFixed(cryptoFraction) + " " + string(c)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
