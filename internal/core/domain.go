package core

import (
	"errors"
	"strings"
)

const (
	// AccountAsset is an account the user owns (checking, savings,
	// brokerage). AccountLiability is money owed; its Balance holds the
	// magnitude owed, signs are applied by the projection engine.
	AccountAsset     AccountKind = "Asset"
	AccountLiability AccountKind = "Liability"

	CategoryExpense CategoryType = "Expense"
	CategoryIncome  CategoryType = "Income"

	TxOrdinary TransactionKind = "ordinary"
	TxTransfer TransactionKind = "transfer"

	OriginManual      TransactionOrigin = "manual"
	OriginRecurring   TransactionOrigin = "recurring"
	OriginInstallment TransactionOrigin = "installment-schedule"

	Monthly         Periodicity = "monthly"
	Quarterly       Periodicity = "quarterly"
	EveryFourMonths Periodicity = "every-4-months"
	Semiannual      Periodicity = "semiannual"
	Annual          Periodicity = "annual"
	Biweekly        Periodicity = "biweekly"
	Weekly          Periodicity = "weekly"
)

// TransferCategory is the category carried by both legs of an internal
// transfer. Transfers never count toward realized category totals.
const TransferCategory = "(Transfer)"

type (
	AccountKind       string
	CategoryType      string
	TransactionKind   string
	TransactionOrigin string
	Periodicity       string

	// Account is one tracked bank account or liability. Settlement
	// fields describe deferred-debit card billing and are only
	// meaningful when all four are set, see SettlementConfigured.
	Account struct {
		ID              int64
		Name            string
		Bank            string
		Kind            AccountKind
		Balance         Money // liabilities: magnitude owed
		TrackedInBudget bool
		OverdraftAlert  bool

		// Asset-only attributes.
		Liquidity  string
		AssetClass string

		// Liability-only attribute.
		TermBucket string

		// Deferred-card settlement parameters.
		BillingDay        int
		CycleStartDay     int
		CycleEndDay       int
		SettlementAccount string // asset account the card is settled against
	}

	// Transaction is a single dated movement on one account. Transfers
	// appear as two transactions with opposite signs sharing a
	// TransferGroupID.
	Transaction struct {
		ID              string
		Date            Date
		Description     string
		Amount          Money // negative = outflow
		Category        string
		Account         string
		Cleared         bool
		Kind            TransactionKind
		TransferGroupID string
		Origin          TransactionOrigin
		RecurrenceID    string // "{ruleID}_{YYYYMMDD}" for generated rows
	}

	// RecurringRule is a template the materializer expands into dated
	// transactions. Transfer rules carry Source/Destination and an
	// unsigned Amount; ordinary rules carry Account and a signed Amount.
	RecurringRule struct {
		ID          string
		Active      bool
		Description string
		Amount      Money
		Category    string
		Account     string
		Kind        TransactionKind
		Source      string
		Destination string
		Periodicity Periodicity
		// DueDaySpec is a day of month for the monthly family, a
		// comma-separated pair of days for biweekly, or an ISO weekday
		// (1=Monday..7=Sunday) for weekly.
		DueDaySpec string
		StartDate  Date
		EndDate    Date // zero value means open-ended
	}

	// DailyBudgetDetail overrides a category's coarse planned amount with
	// a day-granular planned amount. Neutralized details and details whose
	// day already has a real transaction contribute nothing to projection.
	DailyBudgetDetail struct {
		Day         int
		Amount      Money // magnitude; sign comes from the category type
		Neutralized bool
	}

	// BudgetedCategory is one planned line of a month's budget.
	BudgetedCategory struct {
		ID       int64
		Category string
		Planned  Money // magnitude
		Type     CategoryType
		Account  string // default affected account
		Settled  bool
		Details  []DailyBudgetDetail
	}

	// MonthlyLedger groups the transactions and planned categories of one
	// month. It is the unit of mutation: the materializer appends to it,
	// everything else reads it.
	MonthlyLedger struct {
		Month        YearMonth
		Transactions []Transaction
		Categories   []BudgetedCategory
	}

	// Snapshot is a point-in-time capture of all account balances.
	Snapshot struct {
		ID               int64
		TakenAt          Date
		TotalAssets      Money
		TotalLiabilities Money
		NetWorth         Money
		Balances         []SnapshotLine
	}

	SnapshotLine struct {
		Account string
		Balance Money
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyAccount     = errors.New("empty account")

	// ErrMalformedRuleSpec marks a recurring rule whose day specification
	// cannot be parsed for its periodicity. The rule is skipped for the
	// month, never globally disabled.
	ErrMalformedRuleSpec = errors.New("malformed recurrence day spec")

	// ErrIncompleteTransferRule marks a transfer rule missing its source
	// or destination account.
	ErrIncompleteTransferRule = errors.New("transfer rule missing source or destination")

	// ErrIncompleteCardSettlementConfig marks a liability account missing
	// one of the four deferred-card settlement parameters.
	ErrIncompleteCardSettlementConfig = errors.New("incomplete card settlement configuration")

	// ErrNoTrackedAccounts is an expected configuration state: projection
	// was requested with zero accounts marked for budget tracking.
	ErrNoTrackedAccounts = errors.New("no accounts tracked in budget")
)

// SettlementConfigured reports whether all four deferred-card settlement
// parameters are present. Cards missing any of them are excluded from
// settlement simulation.
func (a Account) SettlementConfigured() bool {
	return a.Kind == AccountLiability &&
		a.BillingDay > 0 &&
		a.CycleStartDay > 0 &&
		a.CycleEndDay > 0 &&
		a.SettlementAccount != ""
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("empty account name")
	}
	if a.Kind != AccountAsset && a.Kind != AccountLiability {
		return errors.New("invalid account kind")
	}
	return nil
}

// IsTransfer reports whether the transaction is a leg of an internal
// transfer. The category sentinel is kept for rows imported from legacy
// data that predate the explicit kind.
func (t Transaction) IsTransfer() bool {
	return t.Kind == TxTransfer || t.Category == TransferCategory
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if !t.IsTransfer() && strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// IsTransfer reports whether the rule expands into transfer pairs.
func (r RecurringRule) IsTransfer() bool {
	return r.Kind == TxTransfer
}

// OpenEnded reports whether the rule has no end date.
func (r RecurringRule) OpenEnded() bool {
	return r.EndDate.IsZero()
}

func (r RecurringRule) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !r.OpenEnded() && r.EndDate.Before(r.StartDate.Time) {
		return errors.New("end date must not precede start date")
	}
	switch r.Periodicity {
	case Monthly, Quarterly, EveryFourMonths, Semiannual, Annual, Biweekly, Weekly:
	default:
		return errors.New("invalid periodicity")
	}
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	if r.IsTransfer() {
		if r.Source == "" || r.Destination == "" {
			return ErrIncompleteTransferRule
		}
	} else {
		if strings.TrimSpace(r.Category) == "" {
			return ErrEmptyCategory
		}
		if strings.TrimSpace(r.Account) == "" {
			return ErrEmptyAccount
		}
	}
	return nil
}

// SignedPlanned returns the planned amount with the sign implied by the
// category type: negative for expenses, positive for income.
func (c BudgetedCategory) SignedPlanned() Money {
	if c.Type == CategoryExpense {
		return c.Planned.Abs().Neg()
	}
	return c.Planned.Abs()
}

func (c BudgetedCategory) Validate() error {
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if c.Type != CategoryExpense && c.Type != CategoryIncome {
		return errors.New("invalid category type")
	}
	if c.Planned.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// HasCategory reports whether the ledger already holds a planned category
// with the given name. Names are unique case-insensitively within a month.
func (l *MonthlyLedger) HasCategory(name string) bool {
	for _, c := range l.Categories {
		if strings.EqualFold(c.Category, name) {
			return true
		}
	}
	return false
}

// RecurrenceIDs returns the set of recurrence instance IDs already present
// among the month's generated transactions.
func (l *MonthlyLedger) RecurrenceIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, t := range l.Transactions {
		if t.Origin == OriginRecurring && t.RecurrenceID != "" {
			ids[t.RecurrenceID] = true
		}
	}
	return ids
}
