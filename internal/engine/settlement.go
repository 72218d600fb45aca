package engine

import (
	"fmt"
	"strings"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// SettlementImpact is the simulated billing of a deferred-debit card: the
// linked asset account is debited for the cycle's cleared spend and the
// card's balance is wiped by the same amount.
type SettlementImpact struct {
	Card         string
	DebitAccount string
	DebitImpact  core.Money // negative, applied to the debit account
	CreditImpact core.Money // positive, applied to the card
	Lines        []string
}

// SimulateSettlement estimates the upcoming billing of a deferred-debit
// card for the month. It returns nil when the card has no complete
// settlement configuration, when a manual settlement transfer was already
// recorded this month, when the cycle sum is zero, or when the linked
// debit account is not tracked.
func SimulateSettlement(card core.Account, month core.YearMonth, all, monthTx []core.Transaction, tracked map[string]core.Account) *SettlementImpact {
	if !card.SettlementConfigured() {
		return nil
	}
	if ManualSettlementExists(card, monthTx) {
		return nil
	}

	sum := cardCycleSum(card, month, all)
	if sum.IsZero() {
		return nil
	}
	if _, ok := tracked[card.SettlementAccount]; !ok {
		return nil
	}

	debit := sum.Abs().Neg()
	credit := sum.Abs()
	return &SettlementImpact{
		Card:         card.Name,
		DebitAccount: card.SettlementAccount,
		DebitImpact:  debit,
		CreditImpact: credit,
		Lines: []string{
			fmt.Sprintf("  Card settlement %s on %s: %s EUR", card.Name, card.SettlementAccount, debit),
			fmt.Sprintf("  Balance payoff %s: +%s EUR", card.Name, credit),
		},
	}
}

// ManualSettlementExists reports whether a settlement transfer between the
// card and its debit account was already recorded among the month's
// transactions. Pairing is resolved through the transfer group relation;
// the description patterns written by older versions are kept as a
// fallback for legacy rows without a group ID.
func ManualSettlementExists(card core.Account, monthTx []core.Transaction) bool {
	groups := make(map[string]map[string]bool)
	for _, t := range monthTx {
		if t.TransferGroupID == "" || !t.IsTransfer() {
			continue
		}
		if groups[t.TransferGroupID] == nil {
			groups[t.TransferGroupID] = make(map[string]bool)
		}
		groups[t.TransferGroupID][t.Account] = true
	}
	for _, accounts := range groups {
		if accounts[card.Name] && accounts[card.SettlementAccount] {
			return true
		}
	}

	for _, t := range monthTx {
		if !t.IsTransfer() || t.TransferGroupID != "" {
			continue
		}
		if t.Account == card.SettlementAccount && strings.Contains(t.Description, "to "+card.Name) {
			return true
		}
		if t.Account == card.Name && strings.Contains(t.Description, "from "+card.SettlementAccount) {
			return true
		}
	}
	return false
}

// settlementWindow computes the billing cycle for the month: from the
// cycle start day in the previous month through the cycle end day in the
// target month, both clamped to their month's length.
func settlementWindow(card core.Account, month core.YearMonth) (start, end core.Date) {
	end = month.Date(card.CycleEndDay)
	prev := month.Prev()
	start = prev.Date(card.CycleStartDay)
	return start, end
}

// cardCycleSum totals the card's reconciled spend inside the billing
// window. Only cleared, non-transfer rows are eligible: unreconciled spend
// is not yet on the statement.
func cardCycleSum(card core.Account, month core.YearMonth, all []core.Transaction) core.Money {
	start, end := settlementWindow(card, month)
	var sum core.Money
	for _, t := range all {
		if t.Account != card.Name || t.IsTransfer() || !t.Cleared {
			continue
		}
		if t.Date.Before(start.Time) || t.Date.After(end.Time) {
			continue
		}
		sum = sum.Add(t.Amount)
	}
	return sum
}
