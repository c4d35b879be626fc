// Package report aggregates a user's collections into dashboard and report views.
// Everything here is a pure recomputation over the full collections.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"financeapi/internal/model"
)

const (
	DefaultMonths     = 6
	MaxMonths         = 24
	TopCategories     = 8
	RecentMovements   = 5
	percentPrecision  = 2
	progressPrecision = 4
)

var hundred = decimal.NewFromInt(100)

// Bucket is one part of the needs/savings/wants rule.
type Bucket string

const (
	BucketNeeds   Bucket = "needs"
	BucketSavings Bucket = "savings"
	BucketWants   Bucket = "wants"
)

// BucketOf maps an expense category to its rule bucket. Income categories have none.
func BucketOf(c model.MovementCategory) (Bucket, bool) {
	switch c {
	case model.CategoryServices, model.CategoryEducation, model.CategoryHealth, model.CategoryRent,
		model.CategoryFood, model.CategoryTransport, model.CategoryDebt:
		return BucketNeeds, true
	case model.CategoryInvestment:
		return BucketSavings, true
	case model.CategorySubscription, model.CategoryEntertainment, model.CategoryOther:
		return BucketWants, true
	}
	return "", false
}

// Amount is a value with its display rendering.
type Amount struct {
	Value    decimal.Decimal `json:"value"`
	Currency model.Currency  `json:"currency"`
	Display  string          `json:"display"`
}

func NewAmount(v decimal.Decimal, c model.Currency) Amount {
	return Amount{Value: v, Currency: c, Display: c.Format(v)}
}

// Totals is income against expense.
type Totals struct {
	Income  Amount `json:"income"`
	Expense Amount `json:"expense"`
	Net     Amount `json:"net"`
}

// MonthTotals is Totals for one calendar month, keyed YYYY-MM.
type MonthTotals struct {
	Month string `json:"month"`
	Totals
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category model.MovementCategory `json:"category"`
	Amount   Amount                 `json:"amount"`
}

// Distribution is the percentage of expenses per bucket.
type Distribution struct {
	Needs   decimal.Decimal `json:"needs"`
	Savings decimal.Decimal `json:"savings"`
	Wants   decimal.Decimal `json:"wants"`
}

// RuleComparison sets the actual distribution against the user's target rule and
// the salary budget that rule implies.
type RuleComparison struct {
	Target model.Rule   `json:"target"`
	Actual Distribution `json:"actual"`
	Budget struct {
		Needs   Amount `json:"needs"`
		Savings Amount `json:"savings"`
		Wants   Amount `json:"wants"`
	} `json:"budget"`
}

// DebtTotals summarizes debts of one currency.
type DebtTotals struct {
	Currency  model.Currency `json:"currency"`
	Original  Amount         `json:"original"`
	Remaining Amount         `json:"remaining"`
	Paid      Amount         `json:"paid"`
	Count     int            `json:"count"`
}

// FundProgress is how far a fund is toward its target.
type FundProgress struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Current  Amount          `json:"current"`
	Target   Amount          `json:"target"`
	Progress decimal.Decimal `json:"progress"`
}

// Input holds everything the views are computed from.
type Input struct {
	Config        model.UserConfig
	Accounts      []model.BankAccount
	Debts         []model.Debt
	Subscriptions []model.Subscription
	Movements     []model.Movement
	Funds         []model.Fund
	Now           time.Time
}

// Dashboard is the landing view.
type Dashboard struct {
	Currency             model.Currency   `json:"currency"`
	Balances             []Amount         `json:"balances"`
	CurrentMonth         MonthTotals      `json:"current_month"`
	Rule                 RuleComparison   `json:"rule"`
	SubscriptionsMonthly []Amount         `json:"subscriptions_monthly"`
	Debts                []DebtTotals     `json:"debts"`
	Funds                []FundProgress   `json:"funds"`
	RecentMovements      []model.Movement `json:"recent_movements"`
}

// Report is the multi-month analysis view.
type Report struct {
	Currency   model.Currency  `json:"currency"`
	Months     []MonthTotals   `json:"months"`
	Categories []CategoryTotal `json:"categories"`
	Rule       RuleComparison  `json:"rule"`
	Totals     Totals          `json:"totals"`
}

// BuildDashboard computes the dashboard for in.Now's month.
func BuildDashboard(in Input) Dashboard {
	cur := in.Config.Currency
	month := monthKey(in.Now)
	var thisMonth []model.Movement
	for _, m := range in.Movements {
		if m.Currency == cur && monthKey(m.Date.Time) == month {
			thisMonth = append(thisMonth, m)
		}
	}
	return Dashboard{
		Currency:             cur,
		Balances:             BalancesByCurrency(in.Accounts),
		CurrentMonth:         MonthTotals{Month: month, Totals: RunningTotals(thisMonth, cur)},
		Rule:                 CompareRule(thisMonth, in.Config),
		SubscriptionsMonthly: SubscriptionsMonthly(in.Subscriptions),
		Debts:                DebtSummary(in.Debts),
		Funds:                FundsProgress(in.Funds),
		RecentMovements:      Recent(in.Movements, RecentMovements),
	}
}

// BuildReport computes the report over the last months calendar months.
func BuildReport(in Input, months int) Report {
	if months <= 0 {
		months = DefaultMonths
	}
	if months > MaxMonths {
		months = MaxMonths
	}
	cur := in.Config.Currency
	first := monthStart(in.Now).AddDate(0, -(months - 1), 0)
	end := monthStart(in.Now).AddDate(0, 1, 0)
	var window []model.Movement
	for _, m := range in.Movements {
		if m.Currency == cur && !m.Date.Before(first) && m.Date.Before(end) {
			window = append(window, m)
		}
	}
	return Report{
		Currency:   cur,
		Months:     Monthly(window, cur, in.Now, months),
		Categories: ByCategory(window, cur, TopCategories),
		Rule:       CompareRule(window, in.Config),
		Totals:     RunningTotals(window, cur),
	}
}

// RunningTotals sums income and expense movements in cur. Transfers are ignored.
func RunningTotals(movements []model.Movement, cur model.Currency) Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range movements {
		if m.Currency != cur {
			continue
		}
		switch m.Type {
		case model.MovementIncome:
			income = income.Add(m.Amount)
		case model.MovementExpense:
			expense = expense.Add(m.Amount)
		}
	}
	return Totals{
		Income:  NewAmount(income, cur),
		Expense: NewAmount(expense, cur),
		Net:     NewAmount(income.Sub(expense), cur),
	}
}

// Monthly groups movements in cur into the last months months ending at now.
func Monthly(movements []model.Movement, cur model.Currency, now time.Time, months int) []MonthTotals {
	start := monthStart(now)
	byMonth := make(map[string][]model.Movement, months)
	for _, m := range movements {
		k := monthKey(m.Date.Time)
		byMonth[k] = append(byMonth[k], m)
	}
	out := make([]MonthTotals, 0, months)
	for i := months - 1; i >= 0; i-- {
		k := monthKey(start.AddDate(0, -i, 0))
		out = append(out, MonthTotals{Month: k, Totals: RunningTotals(byMonth[k], cur)})
	}
	return out
}

// ByCategory returns the largest expense categories in cur, descending, at most limit.
func ByCategory(movements []model.Movement, cur model.Currency, limit int) []CategoryTotal {
	sums := map[model.MovementCategory]decimal.Decimal{}
	for _, m := range movements {
		if m.Type != model.MovementExpense || m.Currency != cur {
			continue
		}
		sums[m.Category] = sums[m.Category].Add(m.Amount)
	}
	out := make([]CategoryTotal, 0, len(sums))
	for c, v := range sums {
		out = append(out, CategoryTotal{Category: c, Amount: NewAmount(v, cur)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Value.Cmp(out[j].Amount.Value); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Distribute computes the share of expenses per bucket, in percent.
// A zero expense total yields all zeros.
func Distribute(movements []model.Movement, cur model.Currency) Distribution {
	sums := map[Bucket]decimal.Decimal{}
	total := decimal.Zero
	for _, m := range movements {
		if m.Type != model.MovementExpense || m.Currency != cur {
			continue
		}
		b, ok := BucketOf(m.Category)
		if !ok {
			continue
		}
		sums[b] = sums[b].Add(m.Amount)
		total = total.Add(m.Amount)
	}
	if total.IsZero() {
		return Distribution{Needs: decimal.Zero, Savings: decimal.Zero, Wants: decimal.Zero}
	}
	pct := func(b Bucket) decimal.Decimal {
		return sums[b].Mul(hundred).Div(total).Round(percentPrecision)
	}
	return Distribution{Needs: pct(BucketNeeds), Savings: pct(BucketSavings), Wants: pct(BucketWants)}
}

// CompareRule sets the distribution of movements against cfg's rule and salary.
func CompareRule(movements []model.Movement, cfg model.UserConfig) RuleComparison {
	var rc RuleComparison
	rc.Target = cfg.Rule
	rc.Actual = Distribute(movements, cfg.Currency)
	share := func(pct int) Amount {
		return NewAmount(cfg.MonthlySalary.Mul(decimal.NewFromInt(int64(pct))).Div(hundred), cfg.Currency)
	}
	rc.Budget.Needs = share(cfg.Rule.Needs)
	rc.Budget.Savings = share(cfg.Rule.Savings)
	rc.Budget.Wants = share(cfg.Rule.Wants)
	return rc
}

// SubscriptionsMonthly sums the monthly equivalent of active subscriptions per currency.
func SubscriptionsMonthly(subs []model.Subscription) []Amount {
	sums := map[model.Currency]decimal.Decimal{}
	for _, s := range subs {
		if s.Status != model.SubscriptionActive {
			continue
		}
		sums[s.Currency] = sums[s.Currency].Add(s.MonthlyEquivalent())
	}
	return amounts(sums)
}

// BalancesByCurrency sums account balances per currency.
func BalancesByCurrency(accounts []model.BankAccount) []Amount {
	sums := map[model.Currency]decimal.Decimal{}
	for _, a := range accounts {
		sums[a.Currency] = sums[a.Currency].Add(a.Balance)
	}
	return amounts(sums)
}

// DebtSummary totals debts per currency.
func DebtSummary(debts []model.Debt) []DebtTotals {
	type acc struct {
		original, remaining decimal.Decimal
		count               int
	}
	sums := map[model.Currency]*acc{}
	for _, d := range debts {
		a, ok := sums[d.Currency]
		if !ok {
			a = &acc{}
			sums[d.Currency] = a
		}
		a.original = a.original.Add(d.TotalAmount)
		a.remaining = a.remaining.Add(d.RemainingAmount)
		a.count++
	}
	out := make([]DebtTotals, 0, len(sums))
	for c, a := range sums {
		out = append(out, DebtTotals{
			Currency:  c,
			Original:  NewAmount(a.original, c),
			Remaining: NewAmount(a.remaining, c),
			Paid:      NewAmount(a.original.Sub(a.remaining), c),
			Count:     a.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// FundsProgress reports progress per fund, in input order.
func FundsProgress(funds []model.Fund) []FundProgress {
	out := make([]FundProgress, 0, len(funds))
	for _, f := range funds {
		out = append(out, FundProgress{
			ID:       f.ID,
			Name:     f.Name,
			Current:  NewAmount(f.CurrentAmount, f.Currency),
			Target:   NewAmount(f.TargetAmount, f.Currency),
			Progress: f.Progress().Round(progressPrecision),
		})
	}
	return out
}

// Recent returns the n latest movements by date, newest first.
func Recent(movements []model.Movement, n int) []model.Movement {
	out := make([]model.Movement, len(movements))
	copy(out, movements)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func amounts(sums map[model.Currency]decimal.Decimal) []Amount {
	out := make([]Amount, 0, len(sums))
	for c, v := range sums {
		out = append(out, NewAmount(v, c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}
