package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

// Materializer expands recurring rules into concrete transactions for a
// target month. Materialization is idempotent: instances are keyed by
// rule ID and date, and the ledger is only persisted when something new
// was generated.
type Materializer struct {
	store  Store
	events Publisher
}

func NewMaterializer(store Store, events Publisher) *Materializer {
	return &Materializer{store: store, events: events}
}

// Materialize generates the month's due recurring transactions and
// returns how many were created. Per-rule problems are logged and skip
// only that rule; only store failures abort the run.
func (m *Materializer) Materialize(ctx context.Context, month core.YearMonth) (int, error) {
	rules, err := m.store.LoadRecurringRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("load recurring rules: %w", err)
	}

	accounts, err := m.store.LoadAccounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load accounts: %w", err)
	}
	tracked := trackedAccounts(accounts)

	ledger, err := m.store.LoadMonthlyLedger(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("load ledger %s: %w", month, err)
	}

	existing := ledger.RecurrenceIDs()
	generated := 0

	slog.InfoContext(ctx, "Materializing recurring rules",
		applog.FieldMonth, month.Key(),
		"total_rules", len(rules),
		"existing_instances", len(existing))

	for _, rule := range rules {
		n, err := m.applyRule(ctx, ledger, rule, tracked, existing)
		if err != nil {
			slog.WarnContext(ctx, "Skipping recurring rule for this month",
				applog.FieldRuleID, rule.ID,
				"description", rule.Description,
				applog.FieldMonth, month.Key(),
				applog.FieldError, err)
			continue
		}
		generated += n
	}

	if generated == 0 {
		slog.InfoContext(ctx, "No recurring transactions due", applog.FieldMonth, month.Key())
		return 0, nil
	}

	if err := m.store.SaveMonthlyLedger(ctx, ledger); err != nil {
		return 0, fmt.Errorf("save ledger %s: %w", month, err)
	}

	slog.InfoContext(ctx, "Recurring transactions materialized",
		applog.FieldMonth, month.Key(),
		"generated", generated)

	if m.events != nil {
		if err := m.events.PublishLedgerChanged(ctx, month, generated); err != nil {
			// Ledger is saved; eventing is best effort.
			slog.ErrorContext(ctx, "Failed to publish ledger change",
				applog.FieldMonth, month.Key(), applog.FieldError, err)
		}
	}

	return generated, nil
}

// applyRule appends the rule's due transactions for the ledger's month.
// It mutates existing so later rules see freshly generated instances.
func (m *Materializer) applyRule(ctx context.Context, ledger *core.MonthlyLedger, rule core.RecurringRule, tracked map[string]core.Account, existing map[string]bool) (int, error) {
	month := ledger.Month

	// One instance per month for the monthly family; weekly and biweekly
	// rules legitimately repeat inside a month.
	if !multiplePerMonth(rule.Periodicity) && hasInstanceOf(existing, rule.ID) {
		return 0, nil
	}
	if !rule.Active {
		return 0, nil
	}

	if !rule.OpenEnded() && rule.EndDate.Before(month.First().Time) {
		return 0, nil
	}
	if rule.StartDate.After(month.Last().Time) {
		return 0, nil
	}

	sched, err := SchedulerFor(rule.Periodicity)
	if err != nil {
		return 0, err
	}
	dates, err := sched.DueDates(rule, month)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, due := range dates {
		if due.Before(rule.StartDate.Time) {
			continue
		}
		if !rule.OpenEnded() && due.After(rule.EndDate.Time) {
			continue
		}

		instanceID := InstanceID(rule.ID, due)
		if existing[instanceID] {
			continue
		}

		if rule.IsTransfer() {
			if rule.Source == "" || rule.Destination == "" {
				return generated, core.ErrIncompleteTransferRule
			}
			ledger.Transactions = append(ledger.Transactions, transferLegs(rule, due, instanceID)...)
		} else {
			if _, ok := tracked[rule.Account]; !ok {
				return generated, fmt.Errorf("account %q not tracked in budget", rule.Account)
			}
			ledger.Transactions = append(ledger.Transactions, core.Transaction{
				ID:           uuid.NewString(),
				Date:         due,
				Description:  rule.Description,
				Amount:       rule.Amount,
				Category:     rule.Category,
				Account:      rule.Account,
				Cleared:      false,
				Kind:         core.TxOrdinary,
				Origin:       core.OriginRecurring,
				RecurrenceID: instanceID,
			})
			ensureCategory(ledger, rule.Category, rule.Account, rule.Amount)
		}

		existing[instanceID] = true
		generated++
		slog.DebugContext(ctx, "Generated recurring transaction",
			applog.FieldRuleID, rule.ID,
			"date", due.ISO(),
			applog.FieldCategory, rule.Category,
			applog.FieldAmountCents, rule.Amount.Cents)
	}

	return generated, nil
}

// ensureCategory auto-creates a planned budget line when the month has
// none for the category yet. The planned amount is the magnitude of the
// first occurrence and the type follows its sign.
func ensureCategory(ledger *core.MonthlyLedger, category, account string, amount core.Money) {
	if ledger.HasCategory(category) {
		return
	}
	catType := core.CategoryExpense
	if amount.IsPositive() {
		catType = core.CategoryIncome
	}
	ledger.Categories = append(ledger.Categories, core.BudgetedCategory{
		Category: category,
		Planned:  amount.Abs(),
		Type:     catType,
		Account:  account,
		Settled:  false,
	})
}

// InstanceID builds the idempotency key of one generated occurrence.
func InstanceID(ruleID string, due core.Date) string {
	return ruleID + "_" + due.Compact()
}

// hasInstanceOf reports whether any already generated instance belongs to
// the rule. The suffix must be exactly an eight-digit date: a bare prefix
// check would let rule "rent" shadow instances of rule "rent_paris".
func hasInstanceOf(existing map[string]bool, ruleID string) bool {
	prefix := ruleID + "_"
	for id := range existing {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if isCompactDate(id[len(prefix):]) {
			return true
		}
	}
	return false
}

func isCompactDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// transferLegs builds the two opposite-sign transactions of a recurring
// transfer, linked by a shared transfer group.
func transferLegs(rule core.RecurringRule, due core.Date, instanceID string) []core.Transaction {
	magnitude := rule.Amount.Abs()
	groupID := uuid.NewString()
	return []core.Transaction{
		{
			ID:              uuid.NewString(),
			Date:            due,
			Description:     fmt.Sprintf("Recurring transfer to %s", rule.Destination),
			Amount:          magnitude.Neg(),
			Category:        core.TransferCategory,
			Account:         rule.Source,
			Kind:            core.TxTransfer,
			TransferGroupID: groupID,
			Origin:          core.OriginRecurring,
			RecurrenceID:    instanceID,
		},
		{
			ID:              uuid.NewString(),
			Date:            due,
			Description:     fmt.Sprintf("Recurring transfer from %s", rule.Source),
			Amount:          magnitude,
			Category:        core.TransferCategory,
			Account:         rule.Destination,
			Kind:            core.TxTransfer,
			TransferGroupID: groupID,
			Origin:          core.OriginRecurring,
			RecurrenceID:    instanceID,
		},
	}
}

// trackedAccounts indexes the accounts participating in the budget by
// name.
func trackedAccounts(accounts []core.Account) map[string]core.Account {
	tracked := make(map[string]core.Account)
	for _, a := range accounts {
		if a.TrackedInBudget {
			tracked[a.Name] = a
		}
	}
	return tracked
}
