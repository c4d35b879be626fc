package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
)

func ptr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApply_ExpenseThenRevert(t *testing.T) {
	b := Balances{"A": dec("1000")}
	m := model.Movement{Type: model.MovementExpense, Amount: dec("200"), Currency: model.CurrencyARS, AccountID: ptr("A")}

	require.NoError(t, Apply(b, m))
	assert.True(t, b["A"].Equal(dec("800")))

	require.NoError(t, Revert(b, m))
	assert.True(t, b["A"].Equal(dec("1000")))
}

func TestApply_TransferConservesSum(t *testing.T) {
	b := Balances{"A": dec("1000"), "B": dec("200")}
	before := b["A"].Add(b["B"])
	m := model.Movement{Type: model.MovementTransfer, Amount: dec("500"), AccountID: ptr("A"), DestinationAccountID: ptr("B")}

	require.NoError(t, Apply(b, m))
	assert.True(t, b["A"].Equal(dec("500")))
	assert.True(t, b["B"].Equal(dec("700")))
	assert.True(t, before.Equal(b["A"].Add(b["B"])))
	assert.True(t, before.Equal(dec("1200")))
}

func TestApplyRevert_RoundTrip(t *testing.T) {
	amounts := []string{"0.01", "1", "199.99", "123456789.123456"}
	types := []model.MovementType{model.MovementIncome, model.MovementExpense, model.MovementTransfer}

	for _, typ := range types {
		for _, a := range amounts {
			b := Balances{"A": dec("37.5"), "B": dec("-12")}
			m := model.Movement{Type: typ, Amount: dec(a), AccountID: ptr("A")}
			if typ == model.MovementTransfer {
				m.DestinationAccountID = ptr("B")
			}
			require.NoError(t, Apply(b, m))
			require.NoError(t, Revert(b, m))
			assert.True(t, b["A"].Equal(dec("37.5")), "%s %s", typ, a)
			assert.True(t, b["B"].Equal(dec("-12")), "%s %s", typ, a)
		}
	}
}

func TestApply_NoAccountNoEffect(t *testing.T) {
	b := Balances{"A": dec("10")}
	require.NoError(t, Apply(b, model.Movement{Type: model.MovementIncome, Amount: dec("5")}))
	assert.True(t, b["A"].Equal(dec("10")))
}

func TestApply_Errors(t *testing.T) {
	b := Balances{"A": dec("10")}

	err := Apply(b, model.Movement{Type: model.MovementTransfer, Amount: dec("1"), AccountID: ptr("A")})
	assert.ErrorIs(t, err, ErrIncompleteTransfer)

	err = Apply(b, model.Movement{Type: model.MovementTransfer, Amount: dec("1"), AccountID: ptr("A"), DestinationAccountID: ptr("A")})
	assert.ErrorIs(t, err, ErrSameAccount)

	err = Apply(b, model.Movement{Type: model.MovementTransfer, Amount: dec("1"), AccountID: ptr("A"), DestinationAccountID: ptr("Z")})
	assert.ErrorIs(t, err, ErrUnknownAccount)
	assert.True(t, b["A"].Equal(dec("10")), "partial application must not happen")

	err = Apply(b, model.Movement{Type: "refund", Amount: dec("1"), AccountID: ptr("A")})
	assert.Error(t, err)
}

func TestRevertAvailable(t *testing.T) {
	tests := []struct {
		name        string
		balances    Balances
		movement    model.Movement
		want        Balances
		wantSkipped []string
	}{
		{
			name:     "transfer without destination credits source",
			balances: Balances{"A": dec("500")},
			movement: model.Movement{Type: model.MovementTransfer, Amount: dec("500"), AccountID: ptr("A")},
			want:     Balances{"A": dec("1000")},
		},
		{
			name:     "transfer without source debits destination",
			balances: Balances{"B": dec("700")},
			movement: model.Movement{Type: model.MovementTransfer, Amount: dec("500"), DestinationAccountID: ptr("B")},
			want:     Balances{"B": dec("200")},
		},
		{
			name:        "missing destination account is skipped",
			balances:    Balances{"A": dec("500")},
			movement:    model.Movement{Type: model.MovementTransfer, Amount: dec("500"), AccountID: ptr("A"), DestinationAccountID: ptr("Z")},
			want:        Balances{"A": dec("1000")},
			wantSkipped: []string{"Z"},
		},
		{
			name:     "complete transfer",
			balances: Balances{"A": dec("500"), "B": dec("700")},
			movement: model.Movement{Type: model.MovementTransfer, Amount: dec("500"), AccountID: ptr("A"), DestinationAccountID: ptr("B")},
			want:     Balances{"A": dec("1000"), "B": dec("200")},
		},
		{
			name:        "expense on missing account",
			balances:    Balances{},
			movement:    model.Movement{Type: model.MovementExpense, Amount: dec("5"), AccountID: ptr("A")},
			want:        Balances{},
			wantSkipped: []string{"A"},
		},
		{
			name:     "income",
			balances: Balances{"A": dec("15")},
			movement: model.Movement{Type: model.MovementIncome, Amount: dec("5"), AccountID: ptr("A")},
			want:     Balances{"A": dec("10")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skipped, err := RevertAvailable(tt.balances, tt.movement)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkipped, skipped)
			require.Len(t, tt.balances, len(tt.want))
			for id, want := range tt.want {
				assert.True(t, tt.balances[id].Equal(want), "%s: got %s want %s", id, tt.balances[id], want)
			}
		})
	}

	_, err := RevertAvailable(Balances{}, model.Movement{Type: "refund", Amount: dec("1")})
	assert.Error(t, err)
}
