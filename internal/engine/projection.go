package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

type (
	// AccountProjection breaks down one tracked account's projected
	// end-of-month balance. Liability amounts are magnitudes; the sign
	// convention is applied when totalling.
	AccountProjection struct {
		Name          string
		Kind          core.AccountKind
		Cleared       core.Money // stored balance (reconciled)
		Activity      core.Money // uncleared movement up to month end
		Virtual       core.Money // cleared plus activity
		BudgetImpact  core.Money // remaining planned amounts
		Projected     core.Money
		OverdraftRisk bool
	}

	// ProjectionResult is the full forward-looking picture for one month:
	// per-account detail, totals, the human-readable simulated lines and
	// a per-asset daily balance trajectory for charting.
	ProjectionResult struct {
		Month            core.YearMonth
		Accounts         []AccountProjection
		FutureLines      []string
		TotalAssets      core.Money
		TotalLiabilities core.Money
		NetWorth         core.Money
		TrajectoryDates  []core.Date
		Trajectories     map[string][]core.Money
	}

	// Calculator computes monthly projections. It is read-only: run the
	// Materializer first so the month's recurring transactions exist.
	Calculator struct {
		store Store
	}
)

func NewCalculator(store Store) *Calculator {
	return &Calculator{store: store}
}

// Project computes the projected end-of-month balance for every tracked
// account. It returns (nil, nil) when no account is tracked in the
// budget: that is an expected configuration state, not an error.
//
// Uncleared transactions from any past month always count toward the
// target month's activity; a bill entered in January and still not
// reconciled in March still reduces March's projection.
func (c *Calculator) Project(ctx context.Context, month core.YearMonth) (*ProjectionResult, error) {
	accounts, err := c.store.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	tracked := trackedAccounts(accounts)
	if len(tracked) == 0 {
		slog.InfoContext(ctx, "Projection skipped", applog.FieldMonth, month.Key(), "reason", core.ErrNoTrackedAccounts)
		return nil, nil
	}

	all, err := c.store.LoadAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	ledger, err := c.store.LoadMonthlyLedger(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", month, err)
	}

	monthTx := transactionsIn(all, month)
	realized := core.RealizedByCategory(monthTx)

	activity := make(map[string]core.Money)
	budgetImpact := make(map[string]core.Money)
	var futureLines []string

	// Deferred-card settlements first: their impacts are part of the
	// month's activity.
	var cards []core.Account
	for _, a := range accounts {
		if !a.TrackedInBudget || a.Kind != core.AccountLiability {
			continue
		}
		cards = append(cards, a)
		impact := SimulateSettlement(a, month, all, monthTx, tracked)
		if impact == nil {
			continue
		}
		activity[impact.DebitAccount] = activity[impact.DebitAccount].Add(impact.DebitImpact)
		activity[impact.Card] = activity[impact.Card].Add(impact.CreditImpact)
		futureLines = append(futureLines, impact.Lines...)
		slog.DebugContext(ctx, "Simulated card settlement",
			"card", impact.Card,
			"debit_account", impact.DebitAccount,
			applog.FieldAmountCents, impact.CreditImpact.Cents)
	}

	// Uncleared activity up to and including the month's last day.
	monthEnd := month.Last()
	for _, t := range all {
		if t.Cleared || t.Date.After(monthEnd.Time) {
			continue
		}
		if _, ok := tracked[t.Account]; !ok {
			continue
		}
		activity[t.Account] = activity[t.Account].Add(t.Amount)
	}

	// Remaining budget impact per planned category.
	for _, cat := range ledger.Categories {
		if cat.Settled {
			continue
		}
		if _, ok := tracked[cat.Account]; !ok {
			continue
		}
		impact, lines := remainingImpact(cat, monthTx, realized)
		if impact.IsZero() {
			continue
		}
		budgetImpact[cat.Account] = budgetImpact[cat.Account].Add(impact)
		futureLines = append(futureLines, lines...)
	}

	result := &ProjectionResult{
		Month:        month,
		Trajectories: make(map[string][]core.Money),
	}

	for _, account := range accounts {
		if !account.TrackedInBudget {
			continue
		}
		act := activity[account.Name]
		impact := budgetImpact[account.Name]
		detail := AccountProjection{
			Name:         account.Name,
			Kind:         account.Kind,
			Cleared:      account.Balance,
			Activity:     act,
			BudgetImpact: impact,
		}
		if account.Kind == core.AccountLiability {
			detail.Virtual = account.Balance.Sub(act)
			detail.Projected = detail.Virtual.Sub(impact)
			result.TotalLiabilities = result.TotalLiabilities.Add(detail.Projected)
		} else {
			detail.Virtual = account.Balance.Add(act)
			detail.Projected = detail.Virtual.Add(impact)
			detail.OverdraftRisk = account.OverdraftAlert && detail.Projected.IsNegative()
			result.TotalAssets = result.TotalAssets.Add(detail.Projected)
		}
		result.Accounts = append(result.Accounts, detail)

		if detail.OverdraftRisk {
			slog.WarnContext(ctx, "Overdraft risk",
				applog.FieldAccount, account.Name,
				"projected_cents", detail.Projected.Cents)
		}
	}
	result.NetWorth = result.TotalAssets.Sub(result.TotalLiabilities)

	sort.Strings(futureLines)
	result.FutureLines = futureLines

	c.buildTrajectories(result, accounts, cards, all, monthTx, budgetImpact)

	slog.InfoContext(ctx, "Projection computed",
		applog.FieldMonth, month.Key(),
		"accounts", len(result.Accounts),
		"net_worth_cents", result.NetWorth.Cents)

	return result, nil
}

// buildTrajectories fills the day-by-day balance series of every asset
// account, tracked or not: uncleared transactions land on their own day, the
// remaining budget impact and any still-unsettled card billing land on
// the last day.
func (c *Calculator) buildTrajectories(result *ProjectionResult, accounts, cards []core.Account, all, monthTx []core.Transaction, budgetImpact map[string]core.Money) {
	month := result.Month
	lastDay := month.LastDay()

	result.TrajectoryDates = make([]core.Date, 0, lastDay)
	for day := 1; day <= lastDay; day++ {
		result.TrajectoryDates = append(result.TrajectoryDates, core.NewDate(month.Year, month.Month, day))
	}

	for _, account := range accounts {
		if account.Kind != core.AccountAsset {
			continue
		}
		running := account.Balance
		series := make([]core.Money, 0, lastDay)
		for day := 1; day <= lastDay; day++ {
			date := core.NewDate(month.Year, month.Month, day)
			for _, t := range all {
				if !t.Cleared && t.Account == account.Name && t.Date.Equal(date.Time) {
					running = running.Add(t.Amount)
				}
			}
			if day == lastDay {
				running = running.Add(budgetImpact[account.Name])
				for _, card := range cards {
					if card.SettlementAccount != account.Name || !card.SettlementConfigured() {
						continue
					}
					if ManualSettlementExists(card, monthTx) {
						continue
					}
					running = running.Sub(cardCycleSum(card, month, all).Abs())
				}
			}
			series = append(series, running)
		}
		result.Trajectories[account.Name] = series
	}
}

// remainingImpact computes a category's contribution to the projection:
// either the day-granular model when daily details exist, or planned
// minus realized otherwise. The returned lines describe the simulated
// amounts for the detail view.
func remainingImpact(cat core.BudgetedCategory, monthTx []core.Transaction, realized map[string]core.Money) (core.Money, []string) {
	if len(cat.Details) > 0 {
		daysWithReal := make(map[int]bool)
		for _, t := range monthTx {
			if t.Category == cat.Category {
				daysWithReal[t.Date.Day()] = true
			}
		}

		var remaining core.Money
		var lines []string
		for _, d := range cat.Details {
			if d.Neutralized || daysWithReal[d.Day] {
				continue
			}
			remaining = remaining.Add(d.Amount)
			signed := d.Amount
			if cat.Type == core.CategoryExpense {
				signed = signed.Neg()
			}
			lines = append(lines, fmt.Sprintf("  Daily budget %s (day %d): %s EUR", cat.Category, d.Day, signed))
		}
		if cat.Type == core.CategoryExpense {
			remaining = remaining.Neg()
		}
		return remaining, lines
	}

	remaining := cat.SignedPlanned().Sub(realized[cat.Category])
	if !remaining.Material() {
		return core.Money{}, nil
	}
	line := fmt.Sprintf("  Budget '%s': %s EUR on %s", cat.Category, remaining, cat.Account)
	return remaining, []string{line}
}

// transactionsIn filters the transactions dated inside the month.
func transactionsIn(all []core.Transaction, month core.YearMonth) []core.Transaction {
	var out []core.Transaction
	for _, t := range all {
		if month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}
