package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const (
	userID    = "user-1"
	accountA  = "0b7f6d4e-6a43-4a52-9a8e-5e1b2f0c9a01"
	accountB  = "0b7f6d4e-6a43-4a52-9a8e-5e1b2f0c9a02"
	recordID  = "5d1c2b6a-3e4f-4a8b-9c0d-1e2f3a4b5c6d"
	unknownID = "9e8d7c6b-5a49-4382-b716-a5b4c3d2e1f0"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}
