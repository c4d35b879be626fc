package model

// AccountType classifies a bank account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountWallet     AccountType = "wallet"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountInvestment, AccountWallet:
		return true
	}
	return false
}

// DebtStatus is the lifecycle state of a debt.
type DebtStatus string

const (
	DebtActive  DebtStatus = "active"
	DebtPaid    DebtStatus = "paid"
	DebtOverdue DebtStatus = "overdue"
)

func (s DebtStatus) Valid() bool {
	switch s {
	case DebtActive, DebtPaid, DebtOverdue:
		return true
	}
	return false
}

// BillingCycle is how often a subscription charges.
type BillingCycle string

const (
	CycleWeekly    BillingCycle = "weekly"
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case CycleWeekly, CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	}
	return false
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPaused    SubscriptionStatus = "paused"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionActive, SubscriptionPaused, SubscriptionCancelled:
		return true
	}
	return false
}

// SubscriptionCategory groups subscriptions for display.
type SubscriptionCategory string

const (
	SubCategoryStreaming    SubscriptionCategory = "streaming"
	SubCategoryAI           SubscriptionCategory = "ai"
	SubCategoryGaming       SubscriptionCategory = "gaming"
	SubCategoryProductivity SubscriptionCategory = "productivity"
	SubCategoryEducation    SubscriptionCategory = "education"
	SubCategoryMusic        SubscriptionCategory = "music"
	SubCategoryFinance      SubscriptionCategory = "finance"
	SubCategoryHome         SubscriptionCategory = "home"
	SubCategoryOther        SubscriptionCategory = "other"
)

func (c SubscriptionCategory) Valid() bool {
	switch c {
	case SubCategoryStreaming, SubCategoryAI, SubCategoryGaming, SubCategoryProductivity,
		SubCategoryEducation, SubCategoryMusic, SubCategoryFinance, SubCategoryHome, SubCategoryOther:
		return true
	}
	return false
}

// MovementType is the direction of a cash event.
type MovementType string

const (
	MovementIncome   MovementType = "income"
	MovementExpense  MovementType = "expense"
	MovementTransfer MovementType = "transfer"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIncome, MovementExpense, MovementTransfer:
		return true
	}
	return false
}

// MovementCategory tags a movement for reporting and rule bucketing.
type MovementCategory string

const (
	CategorySalary        MovementCategory = "salary"
	CategoryFreelance     MovementCategory = "freelance"
	CategorySale          MovementCategory = "sale"
	CategoryInvestment    MovementCategory = "investment"
	CategoryServices      MovementCategory = "services"
	CategorySubscription  MovementCategory = "subscription"
	CategoryEducation     MovementCategory = "education"
	CategoryHealth        MovementCategory = "health"
	CategoryEntertainment MovementCategory = "entertainment"
	CategoryRent          MovementCategory = "rent"
	CategoryFood          MovementCategory = "food"
	CategoryTransport     MovementCategory = "transport"
	CategoryDebt          MovementCategory = "debt"
	CategoryOther         MovementCategory = "other"
)

func (c MovementCategory) Valid() bool {
	switch c {
	case CategorySalary, CategoryFreelance, CategorySale, CategoryInvestment, CategoryServices,
		CategorySubscription, CategoryEducation, CategoryHealth, CategoryEntertainment,
		CategoryRent, CategoryFood, CategoryTransport, CategoryDebt, CategoryOther:
		return true
	}
	return false
}

// FundType describes what a fund invests in.
type FundType string

const (
	FundTraditional FundType = "traditional"
	FundStocks      FundType = "stocks"
	FundCrypto      FundType = "crypto"
)

func (t FundType) Valid() bool {
	switch t {
	case FundTraditional, FundStocks, FundCrypto:
		return true
	}
	return false
}

// FundStatus is the lifecycle state of a fund.
type FundStatus string

const (
	FundInProgress FundStatus = "in_progress"
	FundCompleted  FundStatus = "completed"
	FundPaused     FundStatus = "paused"
)

func (s FundStatus) Valid() bool {
	switch s {
	case FundInProgress, FundCompleted, FundPaused:
		return true
	}
	return false
}

// InvestmentType classifies a fund position.
type InvestmentType string

const (
	InvestmentStocks      InvestmentType = "stocks"
	InvestmentBonds       InvestmentType = "bonds"
	InvestmentFunds       InvestmentType = "funds"
	InvestmentCrypto      InvestmentType = "crypto"
	InvestmentCommodities InvestmentType = "commodities"
	InvestmentCash        InvestmentType = "cash"
)

func (t InvestmentType) Valid() bool {
	switch t {
	case InvestmentStocks, InvestmentBonds, InvestmentFunds, InvestmentCrypto, InvestmentCommodities, InvestmentCash:
		return true
	}
	return false
}

// PriceSource names where a position's price comes from.
type PriceSource string

const (
	PriceYahoo         PriceSource = "yahoo"
	PriceCoinMarketCap PriceSource = "coinmarketcap"
	PriceManual        PriceSource = "manual"
)

func (s PriceSource) Valid() bool {
	switch s {
	case PriceYahoo, PriceCoinMarketCap, PriceManual:
		return true
	}
	return false
}
