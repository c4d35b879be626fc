package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financeapi/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mov(date string, typ model.MovementType, cat model.MovementCategory, amount string) model.Movement {
	d, _ := model.ParseDate(date)
	return model.Movement{Date: d, Type: typ, Category: cat, Amount: dec(amount), Currency: model.CurrencyARS}
}

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestBucketOf(t *testing.T) {
	b, ok := BucketOf(model.CategoryRent)
	assert.True(t, ok)
	assert.Equal(t, BucketNeeds, b)

	b, _ = BucketOf(model.CategoryInvestment)
	assert.Equal(t, BucketSavings, b)

	b, _ = BucketOf(model.CategoryEntertainment)
	assert.Equal(t, BucketWants, b)

	_, ok = BucketOf(model.CategorySalary)
	assert.False(t, ok)
}

func TestDistribute(t *testing.T) {
	movs := []model.Movement{
		mov("2024-06-01", model.MovementExpense, model.CategoryRent, "500"),
		mov("2024-06-02", model.MovementExpense, model.CategoryInvestment, "200"),
		mov("2024-06-03", model.MovementExpense, model.CategoryEntertainment, "300"),
		mov("2024-06-04", model.MovementIncome, model.CategorySalary, "5000"),
	}
	d := Distribute(movs, model.CurrencyARS)
	assert.True(t, d.Needs.Equal(dec("50")))
	assert.True(t, d.Savings.Equal(dec("20")))
	assert.True(t, d.Wants.Equal(dec("30")))

	zero := Distribute(nil, model.CurrencyARS)
	assert.True(t, zero.Needs.IsZero())
	assert.True(t, zero.Savings.IsZero())
	assert.True(t, zero.Wants.IsZero())
}

func TestRunningTotals_IgnoresTransfersAndOtherCurrencies(t *testing.T) {
	usd := mov("2024-06-01", model.MovementIncome, model.CategorySalary, "100")
	usd.Currency = model.CurrencyUSD
	movs := []model.Movement{
		mov("2024-06-01", model.MovementIncome, model.CategorySalary, "1000"),
		mov("2024-06-02", model.MovementExpense, model.CategoryFood, "250.50"),
		mov("2024-06-03", model.MovementTransfer, model.CategoryOther, "999"),
		usd,
	}
	tot := RunningTotals(movs, model.CurrencyARS)
	assert.True(t, tot.Income.Value.Equal(dec("1000")))
	assert.True(t, tot.Expense.Value.Equal(dec("250.50")))
	assert.True(t, tot.Net.Value.Equal(dec("749.50")))
	assert.NotEmpty(t, tot.Net.Display)
}

func TestMonthly(t *testing.T) {
	movs := []model.Movement{
		mov("2024-06-01", model.MovementIncome, model.CategorySalary, "1000"),
		mov("2024-04-10", model.MovementExpense, model.CategoryFood, "100"),
	}
	months := Monthly(movs, model.CurrencyARS, now, 3)
	require.Len(t, months, 3)
	assert.Equal(t, "2024-04", months[0].Month)
	assert.Equal(t, "2024-05", months[1].Month)
	assert.Equal(t, "2024-06", months[2].Month)
	assert.True(t, months[0].Expense.Value.Equal(dec("100")))
	assert.True(t, months[1].Income.Value.IsZero())
	assert.True(t, months[2].Income.Value.Equal(dec("1000")))
}

func TestByCategory_TopN(t *testing.T) {
	var movs []model.Movement
	cats := []model.MovementCategory{
		model.CategoryFood, model.CategoryRent, model.CategoryHealth, model.CategoryTransport,
		model.CategoryServices, model.CategoryEducation, model.CategoryDebt, model.CategoryOther,
		model.CategoryEntertainment, model.CategorySubscription,
	}
	for i, c := range cats {
		movs = append(movs, mov("2024-06-01", model.MovementExpense, c, decimal.NewFromInt(int64(10*(i+1))).String()))
	}
	out := ByCategory(movs, model.CurrencyARS, TopCategories)
	require.Len(t, out, TopCategories)
	assert.Equal(t, model.CategorySubscription, out[0].Category)
	assert.True(t, out[0].Amount.Value.Equal(dec("100")))
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].Amount.Value.GreaterThanOrEqual(out[i].Amount.Value))
	}
}

func TestSubscriptionsMonthly_ActiveOnly(t *testing.T) {
	subs := []model.Subscription{
		{Amount: dec("10"), Currency: model.CurrencyUSD, BillingCycle: model.CycleWeekly, Status: model.SubscriptionActive},
		{Amount: dec("120"), Currency: model.CurrencyUSD, BillingCycle: model.CycleYearly, Status: model.SubscriptionActive},
		{Amount: dec("99"), Currency: model.CurrencyUSD, BillingCycle: model.CycleMonthly, Status: model.SubscriptionCancelled},
		{Amount: dec("300"), Currency: model.CurrencyARS, BillingCycle: model.CycleQuarterly, Status: model.SubscriptionActive},
	}
	out := SubscriptionsMonthly(subs)
	require.Len(t, out, 2)
	assert.Equal(t, model.CurrencyARS, out[0].Currency)
	assert.True(t, out[0].Value.Equal(dec("100")))
	assert.Equal(t, model.CurrencyUSD, out[1].Currency)
	assert.True(t, out[1].Value.Equal(dec("50")))
}

func TestDebtSummaryAndBalances(t *testing.T) {
	debts := []model.Debt{
		{TotalAmount: dec("1000"), RemainingAmount: dec("400"), Currency: model.CurrencyARS},
		{TotalAmount: dec("500"), RemainingAmount: dec("500"), Currency: model.CurrencyARS},
	}
	ds := DebtSummary(debts)
	require.Len(t, ds, 1)
	assert.True(t, ds[0].Original.Value.Equal(dec("1500")))
	assert.True(t, ds[0].Remaining.Value.Equal(dec("900")))
	assert.True(t, ds[0].Paid.Value.Equal(dec("600")))
	assert.Equal(t, 2, ds[0].Count)

	accounts := []model.BankAccount{
		{Currency: model.CurrencyARS, Balance: dec("1000")},
		{Currency: model.CurrencyARS, Balance: dec("200")},
		{Currency: model.CurrencyEUR, Balance: dec("5")},
	}
	bs := BalancesByCurrency(accounts)
	require.Len(t, bs, 2)
	assert.True(t, bs[0].Value.Equal(dec("1200")))
	assert.Equal(t, model.CurrencyEUR, bs[1].Currency)
}

func TestBuildReport(t *testing.T) {
	cfg := model.DefaultUserConfig("u1")
	cfg.MonthlySalary = dec("1000")
	movs := []model.Movement{
		mov("2024-06-01", model.MovementIncome, model.CategorySalary, "1000"),
		mov("2024-06-05", model.MovementExpense, model.CategoryFood, "100"),
		mov("2023-01-05", model.MovementExpense, model.CategoryFood, "9999"),
	}
	r := BuildReport(Input{Config: cfg, Movements: movs, Now: now}, 0)

	assert.Len(t, r.Months, DefaultMonths)
	assert.True(t, r.Totals.Expense.Value.Equal(dec("100")), "movements outside the window are excluded")
	assert.True(t, r.Rule.Actual.Needs.Equal(dec("100")))
	assert.True(t, r.Rule.Budget.Needs.Value.Equal(dec("500")))
	assert.True(t, r.Rule.Budget.Savings.Value.Equal(dec("200")))
	assert.True(t, r.Rule.Budget.Wants.Value.Equal(dec("300")))
}

func TestBuildReport_TotalsMatchMonths(t *testing.T) {
	cfg := model.DefaultUserConfig("u1")
	movs := []model.Movement{
		mov("2024-06-30", model.MovementExpense, model.CategoryFood, "40"),
		mov("2024-07-01", model.MovementExpense, model.CategoryFood, "500"),
		mov("2025-01-10", model.MovementIncome, model.CategorySalary, "800"),
	}
	r := BuildReport(Input{Config: cfg, Movements: movs, Now: now}, 3)

	income, expense := decimal.Zero, decimal.Zero
	for _, m := range r.Months {
		income = income.Add(m.Income.Value)
		expense = expense.Add(m.Expense.Value)
	}
	assert.True(t, r.Totals.Expense.Value.Equal(dec("40")), "future movements are excluded")
	assert.True(t, r.Totals.Expense.Value.Equal(expense))
	assert.True(t, r.Totals.Income.Value.Equal(income))
	assert.True(t, r.Rule.Actual.Wants.IsZero() && r.Rule.Actual.Needs.Equal(dec("40")))
}

func TestBuildDashboard(t *testing.T) {
	cfg := model.DefaultUserConfig("u1")
	funds := []model.Fund{{Meta: model.Meta{ID: "f1"}, Name: "Trip", CurrentAmount: dec("250"), TargetAmount: dec("1000"), Currency: model.CurrencyARS}}
	movs := []model.Movement{
		mov("2024-06-02", model.MovementExpense, model.CategoryFood, "10"),
		mov("2024-05-30", model.MovementExpense, model.CategoryFood, "20"),
		mov("2024-06-10", model.MovementIncome, model.CategorySalary, "30"),
	}
	d := BuildDashboard(Input{Config: cfg, Movements: movs, Funds: funds, Now: now})

	assert.Equal(t, "2024-06", d.CurrentMonth.Month)
	assert.True(t, d.CurrentMonth.Expense.Value.Equal(dec("10")))
	assert.True(t, d.CurrentMonth.Income.Value.Equal(dec("30")))
	require.Len(t, d.Funds, 1)
	assert.True(t, d.Funds[0].Progress.Equal(dec("0.25")))
	require.Len(t, d.RecentMovements, 3)
	assert.Equal(t, "2024-06-10", d.RecentMovements[0].Date.String())
}
