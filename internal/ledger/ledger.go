// Package ledger computes the balance effect of movements on bank accounts.
//
// income adds to its account, expense subtracts from it, and a transfer moves
// the amount from the source to the destination without currency conversion.
// Reverting a movement applies the exact additive inverse.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
)

var (
	ErrIncompleteTransfer = errors.New("transfer requires source and destination accounts")
	ErrSameAccount        = errors.New("transfer source and destination must differ")
	ErrUnknownAccount     = errors.New("account not found")
)

// Effect is a signed change to one account balance.
type Effect struct {
	AccountID string
	Delta     decimal.Decimal
}

// Effects lists the balance changes m implies. A movement without a linked
// account has no effect.
func Effects(m model.Movement) ([]Effect, error) {
	switch m.Type {
	case model.MovementIncome:
		if m.AccountID == nil {
			return nil, nil
		}
		return []Effect{{AccountID: *m.AccountID, Delta: m.Amount}}, nil
	case model.MovementExpense:
		if m.AccountID == nil {
			return nil, nil
		}
		return []Effect{{AccountID: *m.AccountID, Delta: m.Amount.Neg()}}, nil
	case model.MovementTransfer:
		if m.AccountID == nil || m.DestinationAccountID == nil {
			return nil, ErrIncompleteTransfer
		}
		if *m.AccountID == *m.DestinationAccountID {
			return nil, ErrSameAccount
		}
		return []Effect{
			{AccountID: *m.AccountID, Delta: m.Amount.Neg()},
			{AccountID: *m.DestinationAccountID, Delta: m.Amount},
		}, nil
	default:
		return nil, fmt.Errorf("unknown movement type %q", m.Type)
	}
}

// Balances maps account id to balance.
type Balances map[string]decimal.Decimal

// Apply adds the effect of m to b.
func Apply(b Balances, m model.Movement) error {
	return apply(b, m, false)
}

// Revert removes the effect of m from b.
func Revert(b Balances, m model.Movement) error {
	return apply(b, m, true)
}

func apply(b Balances, m model.Movement, invert bool) error {
	effects, err := Effects(m)
	if err != nil {
		return err
	}
	for _, e := range effects {
		if _, ok := b[e.AccountID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAccount, e.AccountID)
		}
	}
	for _, e := range effects {
		delta := e.Delta
		if invert {
			delta = delta.Neg()
		}
		b[e.AccountID] = b[e.AccountID].Add(delta)
	}
	return nil
}

// RevertAvailable removes the effect of m from each side whose account is in
// b and returns the ids it skipped. A transfer that lost one of its accounts
// still reverts the side that remains.
func RevertAvailable(b Balances, m model.Movement) ([]string, error) {
	effects, err := sides(m)
	if err != nil {
		return nil, err
	}
	var skipped []string
	for _, e := range effects {
		if _, ok := b[e.AccountID]; !ok {
			skipped = append(skipped, e.AccountID)
			continue
		}
		b[e.AccountID] = b[e.AccountID].Sub(e.Delta)
	}
	return skipped, nil
}

// sides is Effects without the pairing checks on transfers.
func sides(m model.Movement) ([]Effect, error) {
	if m.Type != model.MovementTransfer {
		return Effects(m)
	}
	var effects []Effect
	if m.AccountID != nil {
		effects = append(effects, Effect{AccountID: *m.AccountID, Delta: m.Amount.Neg()})
	}
	if m.DestinationAccountID != nil {
		effects = append(effects, Effect{AccountID: *m.DestinationAccountID, Delta: m.Amount})
	}
	return effects, nil
}
