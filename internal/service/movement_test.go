package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
	repoMocks "financeapi/internal/repository/mocks"
	"financeapi/internal/validation"
)

type movementMocks struct {
	repo     *repoMocks.MockRecordStore[model.Movement]
	accounts *repoMocks.MockAccountRepository
	cards    *repoMocks.MockRecordStore[model.Card]
	tx       *repoMocks.MockTxManager
}

func newMovementService() (MovementService, movementMocks) {
	m := movementMocks{
		repo:     new(repoMocks.MockRecordStore[model.Movement]),
		accounts: new(repoMocks.MockAccountRepository),
		cards:    new(repoMocks.MockRecordStore[model.Card]),
		tx:       new(repoMocks.MockTxManager),
	}
	svc := NewMovementService(m.repo, m.accounts, m.cards,
		new(repoMocks.MockRecordStore[model.Fund]), new(repoMocks.MockRecordStore[model.Subscription]), m.tx)
	return svc, m
}

func account(id, balance string) *model.BankAccount {
	return &model.BankAccount{Meta: model.Meta{ID: id}, Currency: model.CurrencyARS, Balance: *dec(balance)}
}

func balanceIs(id, want string) interface{} {
	return mock.MatchedBy(func(a *model.BankAccount) bool {
		return a.ID == id && a.Balance.Equal(*dec(want))
	})
}

func returnMovement(_ context.Context, _ string, m *model.Movement) *model.Movement { return m }

func TestMovementService_CreateExpense(t *testing.T) {
	ctx := context.Background()
	svc, m := newMovementService()

	m.tx.On("WithinTx", ctx).Return(nil)
	m.accounts.On("GetByIDForUpdate", ctx, userID, accountA).Return(account(accountA, "1000"), nil)
	m.accounts.On("Upsert", ctx, userID, balanceIs(accountA, "800")).Return(account(accountA, "800"), nil)
	m.repo.On("Upsert", ctx, userID, mock.Anything).Return(returnMovement, nil)

	got, err := svc.Save(ctx, userID, "", MovementInput{
		Date:        "2024-03-10",
		Type:        "expense",
		Description: "Groceries",
		Amount:      dec("200"),
		Currency:    "ARS",
		Category:    "food",
		AccountID:   str(accountA),
	})

	require.NoError(t, err)
	assert.Equal(t, model.CategoryFood, got.Category)
	m.tx.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.repo.AssertExpectations(t)
}

func TestMovementService_CreateTransfer(t *testing.T) {
	ctx := context.Background()
	svc, m := newMovementService()

	m.tx.On("WithinTx", ctx).Return(nil)
	m.accounts.On("GetByIDForUpdate", ctx, userID, accountA).Return(account(accountA, "1000"), nil)
	m.accounts.On("GetByIDForUpdate", ctx, userID, accountB).Return(account(accountB, "200"), nil)
	m.accounts.On("Upsert", ctx, userID, balanceIs(accountA, "500")).Return(account(accountA, "500"), nil).Once()
	m.accounts.On("Upsert", ctx, userID, balanceIs(accountB, "700")).Return(account(accountB, "700"), nil).Once()
	m.repo.On("Upsert", ctx, userID, mock.Anything).Return(returnMovement, nil)

	_, err := svc.Save(ctx, userID, "", MovementInput{
		Date:                 "2024-03-10",
		Type:                 "transfer",
		Description:          "Move to savings",
		Amount:               dec("500"),
		Currency:             "ARS",
		AccountID:            str(accountA),
		DestinationAccountID: str(accountB),
	})

	require.NoError(t, err)
	m.accounts.AssertExpectations(t)
}

func TestMovementService_UpdateRevertsPrevious(t *testing.T) {
	ctx := context.Background()
	svc, m := newMovementService()

	prev := &model.Movement{
		Meta:      model.Meta{ID: recordID},
		Type:      model.MovementExpense,
		Amount:    *dec("200"),
		Currency:  model.CurrencyARS,
		AccountID: str(accountA),
	}
	m.tx.On("WithinTx", ctx).Return(nil)
	m.repo.On("GetByID", ctx, userID, recordID).Return(prev, nil)
	// 800 after the old expense; revert to 1000, then apply 300.
	m.accounts.On("GetByIDForUpdate", ctx, userID, accountA).Return(account(accountA, "800"), nil)
	m.accounts.On("Upsert", ctx, userID, balanceIs(accountA, "700")).Return(account(accountA, "700"), nil)
	m.repo.On("Upsert", ctx, userID, mock.MatchedBy(func(mv *model.Movement) bool {
		return mv.ID == recordID
	})).Return(returnMovement, nil)

	_, err := svc.Save(ctx, userID, recordID, MovementInput{
		Date:        "2024-03-10",
		Type:        "expense",
		Description: "Groceries",
		Amount:      dec("300"),
		Currency:    "ARS",
		AccountID:   str(accountA),
	})

	require.NoError(t, err)
	m.accounts.AssertExpectations(t)
	m.repo.AssertExpectations(t)
}

func TestMovementService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("reverts balance", func(t *testing.T) {
		svc, m := newMovementService()
		m.tx.On("WithinTx", ctx).Return(nil)
		m.repo.On("GetByID", ctx, userID, recordID).Return(&model.Movement{
			Meta:      model.Meta{ID: recordID},
			Type:      model.MovementIncome,
			Amount:    *dec("250"),
			AccountID: str(accountA),
		}, nil)
		m.accounts.On("GetByIDForUpdate", ctx, userID, accountA).Return(account(accountA, "1250"), nil)
		m.accounts.On("Upsert", ctx, userID, balanceIs(accountA, "1000")).Return(account(accountA, "1000"), nil)
		m.repo.On("Delete", ctx, userID, recordID).Return(nil)

		require.NoError(t, svc.Delete(ctx, userID, recordID))
		m.accounts.AssertExpectations(t)
		m.repo.AssertExpectations(t)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		svc, m := newMovementService()
		m.tx.On("WithinTx", ctx).Return(nil)
		m.repo.On("GetByID", ctx, userID, unknownID).Return(nil, sql.ErrNoRows)

		require.NoError(t, svc.Delete(ctx, userID, unknownID))
		m.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		m.accounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty id", func(t *testing.T) {
		svc, _ := newMovementService()
		assert.ErrorIs(t, svc.Delete(ctx, userID, ""), ErrIDRequired)
	})
}

func TestMovementService_RevertWithDeletedAccount(t *testing.T) {
	ctx := context.Background()

	// A transfer whose account was deleted keeps only the surviving side.
	transferFrom := func(source, destination *string) *model.Movement {
		return &model.Movement{
			Meta:                 model.Meta{ID: recordID},
			Type:                 model.MovementTransfer,
			Amount:               *dec("500"),
			Currency:             model.CurrencyARS,
			AccountID:            source,
			DestinationAccountID: destination,
		}
	}

	tests := []struct {
		name    string
		prev    *model.Movement
		next    *MovementInput
		account string
		balance string
		want    string
	}{
		{
			name:    "delete without destination credits source",
			prev:    transferFrom(str(accountA), nil),
			account: accountA,
			balance: "500",
			want:    "1000",
		},
		{
			name:    "delete without source debits destination",
			prev:    transferFrom(nil, str(accountB)),
			account: accountB,
			balance: "700",
			want:    "200",
		},
		{
			name: "save over transfer without destination",
			prev: transferFrom(str(accountA), nil),
			next: &MovementInput{
				Date: "2024-03-10", Type: "expense", Description: "Groceries", Amount: dec("100"), Currency: "ARS", Category: "food",
				AccountID: str(accountA),
			},
			account: accountA,
			balance: "500",
			want:    "900",
		},
		{
			name: "save over transfer without source",
			prev: transferFrom(nil, str(accountB)),
			next: &MovementInput{
				Date: "2024-03-10", Type: "income", Description: "Salary", Amount: dec("100"), Currency: "ARS",
				AccountID: str(accountB),
			},
			account: accountB,
			balance: "700",
			want:    "300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newMovementService()
			m.tx.On("WithinTx", ctx).Return(nil)
			m.repo.On("GetByID", ctx, userID, recordID).Return(tt.prev, nil)
			m.accounts.On("GetByIDForUpdate", ctx, userID, tt.account).Return(account(tt.account, tt.balance), nil)
			m.accounts.On("Upsert", ctx, userID, balanceIs(tt.account, tt.want)).Return(account(tt.account, tt.want), nil).Once()

			var err error
			if tt.next == nil {
				m.repo.On("Delete", ctx, userID, recordID).Return(nil)
				err = svc.Delete(ctx, userID, recordID)
			} else {
				m.repo.On("Upsert", ctx, userID, mock.Anything).Return(returnMovement, nil)
				_, err = svc.Save(ctx, userID, recordID, *tt.next)
			}

			require.NoError(t, err)
			m.accounts.AssertExpectations(t)
			m.repo.AssertExpectations(t)
		})
	}

	t.Run("deleted account row is skipped", func(t *testing.T) {
		svc, m := newMovementService()
		m.tx.On("WithinTx", ctx).Return(nil)
		m.repo.On("GetByID", ctx, userID, recordID).Return(transferFrom(str(accountA), str(accountB)), nil)
		m.accounts.On("GetByIDForUpdate", ctx, userID, accountA).Return(account(accountA, "500"), nil)
		m.accounts.On("GetByIDForUpdate", ctx, userID, accountB).Return(nil, sql.ErrNoRows)
		m.accounts.On("Upsert", ctx, userID, balanceIs(accountA, "1000")).Return(account(accountA, "1000"), nil).Once()
		m.repo.On("Delete", ctx, userID, recordID).Return(nil)

		require.NoError(t, svc.Delete(ctx, userID, recordID))
		m.accounts.AssertExpectations(t)
	})
}

func TestMovementService_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         MovementInput
		wantFields []string
	}{
		{
			name:       "transfer needs both accounts",
			in:         MovementInput{Date: "2024-01-01", Type: "transfer", Description: "t", Amount: dec("1"), Currency: "ARS", AccountID: str(accountA)},
			wantFields: []string{"destination_account_id"},
		},
		{
			name: "transfer accounts must differ",
			in: MovementInput{Date: "2024-01-01", Type: "transfer", Description: "t", Amount: dec("1"), Currency: "ARS",
				AccountID: str(accountA), DestinationAccountID: str(accountA)},
			wantFields: []string{"destination_account_id"},
		},
		{
			name:       "expense needs an account",
			in:         MovementInput{Date: "2024-01-01", Type: "expense", Description: "e", Amount: dec("1"), Currency: "ARS"},
			wantFields: []string{"account_id"},
		},
		{
			name:       "bad date amount and type",
			in:         MovementInput{Date: "01/02/2024", Type: "refund", Description: "e", Amount: dec("-1"), Currency: "ARS"},
			wantFields: []string{"date", "type", "amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newMovementService()
			m.tx.On("WithinTx", ctx).Return(nil)

			_, err := svc.Save(ctx, userID, "", tt.in)

			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			for _, f := range tt.wantFields {
				assert.Contains(t, verrs, f)
			}
			m.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMovementService_MissingAccount(t *testing.T) {
	ctx := context.Background()
	svc, m := newMovementService()
	m.tx.On("WithinTx", ctx).Return(nil)
	m.accounts.On("GetByIDForUpdate", ctx, userID, unknownID).Return(nil, sql.ErrNoRows)

	_, err := svc.Save(ctx, userID, "", MovementInput{
		Date: "2024-01-01", Type: "income", Description: "Salary", Amount: dec("100"), Currency: "ARS", AccountID: str(unknownID),
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "account_id")
}

func TestMovementService_TxFailure(t *testing.T) {
	ctx := context.Background()
	svc, m := newMovementService()
	m.tx.On("WithinTx", ctx).Return(errors.New("begin failed"))

	_, err := svc.Save(ctx, userID, "", MovementInput{})

	assert.EqualError(t, err, "begin failed")
	m.repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}
