package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
	repoMocks "financeapi/internal/repository/mocks"
	"financeapi/internal/validation"
)

func TestSubscriptionService_Save(t *testing.T) {
	ctx := context.Background()
	freezeTime(t, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))

	newSvc := func() (SubscriptionService, *repoMocks.MockRecordStore[model.Subscription]) {
		repo := new(repoMocks.MockRecordStore[model.Subscription])
		return NewSubscriptionService(repo, new(repoMocks.MockRecordStore[model.Card]), new(repoMocks.MockAccountRepository)), repo
	}

	t.Run("computes next charge date and defaults", func(t *testing.T) {
		svc, repo := newSvc()
		repo.On("Upsert", ctx, userID, mock.Anything).Return(func(_ context.Context, _ string, s *model.Subscription) *model.Subscription {
			return s
		}, nil)

		got, err := svc.Save(ctx, userID, "", SubscriptionInput{
			Name:         "Netflix",
			Provider:     "Netflix",
			Amount:       dec("9.99"),
			Currency:     "USD",
			BillingCycle: "monthly",
			BillingDay:   5,
		})

		require.NoError(t, err)
		assert.Equal(t, "2024-04-05", got.NextChargeDate.String())
		assert.Equal(t, model.SubscriptionActive, got.Status)
		assert.Equal(t, model.SubCategoryOther, got.Category)
	})

	t.Run("keeps explicit next charge date", func(t *testing.T) {
		svc, repo := newSvc()
		repo.On("Upsert", ctx, userID, mock.MatchedBy(func(s *model.Subscription) bool {
			return s.NextChargeDate.String() == "2024-06-01"
		})).Return(&model.Subscription{}, nil)

		_, err := svc.Save(ctx, userID, "", SubscriptionInput{
			Name:           "ChatGPT",
			Provider:       "OpenAI",
			Amount:         dec("20"),
			Currency:       "USD",
			BillingCycle:   "monthly",
			BillingDay:     1,
			NextChargeDate: str("2024-06-01"),
			Category:       "ai",
		})

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _ := newSvc()

		_, err := svc.Save(ctx, userID, "", SubscriptionInput{
			Name:         "x",
			Provider:     "y",
			Amount:       dec("0"),
			Currency:     "USD",
			BillingCycle: "daily",
			BillingDay:   32,
			Status:       "expired",
		})

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		for _, f := range []string{"amount", "billing_cycle", "billing_day", "status"} {
			assert.Contains(t, verrs, f)
		}
	})
}
