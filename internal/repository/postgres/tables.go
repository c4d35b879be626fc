package postgres

import (
	"context"
	"database/sql"

	"financeapi/internal/model"
	"financeapi/internal/repository"
)

const newestFirst = "created_at DESC, id DESC"

var accountsTable = table[model.BankAccount]{
	name:    "accounts",
	columns: []string{"name", "institution", "alias", "type", "currency", "balance", "autopay_day", "notes"},
	indexes: map[string]string{"institution": "institution", "currency": "currency"},
	orderBy: newestFirst,
	meta:    func(a *model.BankAccount) *model.Meta { return &a.Meta },
	values: func(a *model.BankAccount) []any {
		return []any{a.Name, a.Institution, a.Alias, string(a.Type), string(a.Currency), a.Balance, a.AutopayDay, a.Notes}
	},
	fields: func(a *model.BankAccount) []any {
		return []any{&a.Name, &a.Institution, &a.Alias, &a.Type, &a.Currency, &a.Balance, &a.AutopayDay, &a.Notes}
	},
}

var cardsTable = table[model.Card]{
	name:    "cards",
	columns: []string{"name", "issuer", "last_four", "credit_limit", "currency", "closing_day", "payment_day", "bank_account_id"},
	indexes: map[string]string{"issuer": "issuer", "bank_account_id": "bank_account_id"},
	orderBy: newestFirst,
	meta:    func(c *model.Card) *model.Meta { return &c.Meta },
	values: func(c *model.Card) []any {
		return []any{c.Name, c.Issuer, c.LastFour, c.CreditLimit, string(c.Currency), c.ClosingDay, c.PaymentDay, c.BankAccountID}
	},
	fields: func(c *model.Card) []any {
		return []any{&c.Name, &c.Issuer, &c.LastFour, &c.CreditLimit, &c.Currency, &c.ClosingDay, &c.PaymentDay, &c.BankAccountID}
	},
}

var debtsTable = table[model.Debt]{
	name: "debts",
	columns: []string{"creditor", "description", "total_amount", "remaining_amount", "currency", "due_date",
		"interest_rate", "account_id", "status", "last_payment_date"},
	indexes: map[string]string{"status": "status", "account_id": "account_id"},
	orderBy: newestFirst,
	meta:    func(d *model.Debt) *model.Meta { return &d.Meta },
	values: func(d *model.Debt) []any {
		return []any{d.Creditor, d.Description, d.TotalAmount, d.RemainingAmount, string(d.Currency), d.DueDate,
			d.InterestRate, d.AccountID, string(d.Status), d.LastPaymentDate}
	},
	fields: func(d *model.Debt) []any {
		return []any{&d.Creditor, &d.Description, &d.TotalAmount, &d.RemainingAmount, &d.Currency, &d.DueDate,
			&d.InterestRate, &d.AccountID, &d.Status, &d.LastPaymentDate}
	},
}

var subscriptionsTable = table[model.Subscription]{
	name: "subscriptions",
	columns: []string{"name", "provider", "amount", "currency", "billing_cycle", "billing_day", "next_charge_date",
		"status", "category", "card_id", "bank_account_id", "notes"},
	indexes: map[string]string{
		"status":          "status",
		"category":        "category",
		"card_id":         "card_id",
		"bank_account_id": "bank_account_id",
	},
	orderBy: "next_charge_date ASC, id ASC",
	meta:    func(s *model.Subscription) *model.Meta { return &s.Meta },
	values: func(s *model.Subscription) []any {
		return []any{s.Name, s.Provider, s.Amount, string(s.Currency), string(s.BillingCycle), s.BillingDay, s.NextChargeDate,
			string(s.Status), string(s.Category), s.CardID, s.BankAccountID, s.Notes}
	},
	fields: func(s *model.Subscription) []any {
		return []any{&s.Name, &s.Provider, &s.Amount, &s.Currency, &s.BillingCycle, &s.BillingDay, &s.NextChargeDate,
			&s.Status, &s.Category, &s.CardID, &s.BankAccountID, &s.Notes}
	},
}

var movementsTable = table[model.Movement]{
	name: "movements",
	columns: []string{"date", "type", "description", "amount", "currency", "category", "account_id",
		"destination_account_id", "card_id", "fund_id", "subscription_id", "notes"},
	indexes: map[string]string{
		"date":       "date",
		"type":       "type",
		"category":   "category",
		"account_id": "account_id",
		"card_id":    "card_id",
	},
	orderBy: "date DESC, created_at DESC, id DESC",
	meta:    func(m *model.Movement) *model.Meta { return &m.Meta },
	values: func(m *model.Movement) []any {
		return []any{m.Date, string(m.Type), m.Description, m.Amount, string(m.Currency), string(m.Category), m.AccountID,
			m.DestinationAccountID, m.CardID, m.FundID, m.SubscriptionID, m.Notes}
	},
	fields: func(m *model.Movement) []any {
		return []any{&m.Date, &m.Type, &m.Description, &m.Amount, &m.Currency, &m.Category, &m.AccountID,
			&m.DestinationAccountID, &m.CardID, &m.FundID, &m.SubscriptionID, &m.Notes}
	},
}

var fundsTable = table[model.Fund]{
	name: "funds",
	columns: []string{"name", "description", "type", "target_amount", "current_amount", "currency", "target_date",
		"status", "auto_sync", "positions"},
	indexes: map[string]string{"status": "status"},
	orderBy: newestFirst,
	meta:    func(f *model.Fund) *model.Meta { return &f.Meta },
	values: func(f *model.Fund) []any {
		return []any{f.Name, f.Description, string(f.Type), f.TargetAmount, f.CurrentAmount, string(f.Currency), f.TargetDate,
			string(f.Status), f.AutoSync, f.Positions}
	},
	fields: func(f *model.Fund) []any {
		return []any{&f.Name, &f.Description, &f.Type, &f.TargetAmount, &f.CurrentAmount, &f.Currency, &f.TargetDate,
			&f.Status, &f.AutoSync, &f.Positions}
	},
}

var userConfigsTable = table[model.UserConfig]{
	name: "user_configs",
	columns: []string{"monthly_salary", "payday", "currency", "rule_needs", "rule_savings", "rule_wants",
		"setup_completed"},
	indexes: map[string]string{},
	orderBy: newestFirst,
	meta:    func(c *model.UserConfig) *model.Meta { return &c.Meta },
	values: func(c *model.UserConfig) []any {
		return []any{c.MonthlySalary, c.Payday, string(c.Currency), c.Rule.Needs, c.Rule.Savings, c.Rule.Wants,
			c.SetupCompleted}
	},
	fields: func(c *model.UserConfig) []any {
		return []any{&c.MonthlySalary, &c.Payday, &c.Currency, &c.Rule.Needs, &c.Rule.Savings, &c.Rule.Wants,
			&c.SetupCompleted}
	},
}

// AccountPostgres adds row locking to the account store.
type AccountPostgres struct {
	*Store[model.BankAccount]
}

var _ repository.AccountRepository = (*AccountPostgres)(nil)

func NewAccountPostgres(db *sql.DB) *AccountPostgres {
	return &AccountPostgres{Store: newStore(db, accountsTable)}
}

// GetByIDForUpdate fetches the account with SELECT ... FOR UPDATE. It must run inside
// TxManager.WithinTx for the lock to outlive the statement.
func (r *AccountPostgres) GetByIDForUpdate(ctx context.Context, userID, id string) (*model.BankAccount, error) {
	return r.getByID(ctx, userID, id, " FOR UPDATE")
}

func NewCardPostgres(db *sql.DB) *Store[model.Card] {
	return newStore(db, cardsTable)
}

func NewDebtPostgres(db *sql.DB) *Store[model.Debt] {
	return newStore(db, debtsTable)
}

func NewSubscriptionPostgres(db *sql.DB) *Store[model.Subscription] {
	return newStore(db, subscriptionsTable)
}

func NewMovementPostgres(db *sql.DB) *Store[model.Movement] {
	return newStore(db, movementsTable)
}

func NewFundPostgres(db *sql.DB) *Store[model.Fund] {
	return newStore(db, fundsTable)
}

// NewUserConfigPostgres stores the per-user settings singleton; records use the user id as id.
func NewUserConfigPostgres(db *sql.DB) *Store[model.UserConfig] {
	return newStore(db, userConfigsTable)
}

var (
	_ repository.CardRepository         = (*Store[model.Card])(nil)
	_ repository.DebtRepository         = (*Store[model.Debt])(nil)
	_ repository.SubscriptionRepository = (*Store[model.Subscription])(nil)
	_ repository.MovementRepository     = (*Store[model.Movement])(nil)
	_ repository.FundRepository         = (*Store[model.Fund])(nil)
	_ repository.UserConfigRepository   = (*Store[model.UserConfig])(nil)
)
