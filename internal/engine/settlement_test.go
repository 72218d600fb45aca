package engine

import (
	"testing"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func deferredCard() core.Account {
	return core.Account{
		Name:              "Gold Card",
		Kind:              core.AccountLiability,
		Balance:           euros(0),
		TrackedInBudget:   true,
		BillingDay:        5,
		CycleStartDay:     25,
		CycleEndDay:       24,
		SettlementAccount: "Checking",
	}
}

func cardSpend(day int, month core.YearMonth, amount core.Money, cleared bool) core.Transaction {
	return core.Transaction{
		ID:       "t",
		Date:     month.Date(day),
		Amount:   amount,
		Category: "Shopping",
		Account:  "Gold Card",
		Cleared:  cleared,
		Kind:     core.TxOrdinary,
	}
}

func TestSettlementWindow(t *testing.T) {
	card := deferredCard()
	start, end := settlementWindow(card, core.NewYearMonth(2025, 3))
	if got := start.ISO(); got != "2025-02-25" {
		t.Errorf("start = %s, want 2025-02-25", got)
	}
	if got := end.ISO(); got != "2025-03-24" {
		t.Errorf("end = %s, want 2025-03-24", got)
	}

	// Cycle start day beyond the previous month's length clamps.
	card.CycleStartDay = 31
	start, _ = settlementWindow(card, core.NewYearMonth(2025, 3))
	if got := start.ISO(); got != "2025-02-28" {
		t.Errorf("clamped start = %s, want 2025-02-28", got)
	}
}

func TestCardCycleSum(t *testing.T) {
	month := core.NewYearMonth(2025, 3)
	prev := month.Prev()
	all := []core.Transaction{
		cardSpend(26, prev, euros(-40), true),   // inside window, previous month
		cardSpend(24, prev, euros(-99), true),   // before window
		cardSpend(10, month, euros(-60), true),  // inside window
		cardSpend(10, month, euros(-30), false), // uncleared, excluded
		cardSpend(25, month, euros(-80), true),  // after window end
		{ // transfer leg on the card, excluded
			ID: "tr", Date: month.Date(5), Amount: euros(100),
			Category: core.TransferCategory, Account: "Gold Card",
			Cleared: true, Kind: core.TxTransfer, TransferGroupID: "g",
		},
	}

	sum := cardCycleSum(deferredCard(), month, all)
	if sum != euros(-100) {
		t.Fatalf("cycle sum = %v, want -100", sum)
	}
}

func TestSimulateSettlement(t *testing.T) {
	month := core.NewYearMonth(2025, 3)
	card := deferredCard()
	tracked := map[string]core.Account{
		"Checking": {Name: "Checking", Kind: core.AccountAsset, TrackedInBudget: true},
	}
	all := []core.Transaction{cardSpend(10, month, euros(-150), true)}

	impact := SimulateSettlement(card, month, all, nil, tracked)
	if impact == nil {
		t.Fatal("expected a settlement impact")
	}
	if impact.DebitAccount != "Checking" || impact.Card != "Gold Card" {
		t.Errorf("accounts = %s / %s", impact.DebitAccount, impact.Card)
	}
	if impact.DebitImpact != euros(-150) {
		t.Errorf("debit impact = %v, want -150", impact.DebitImpact)
	}
	if impact.CreditImpact != euros(150) {
		t.Errorf("credit impact = %v, want +150", impact.CreditImpact)
	}
	if len(impact.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(impact.Lines))
	}
}

func TestSimulateSettlementSkips(t *testing.T) {
	month := core.NewYearMonth(2025, 3)
	tracked := map[string]core.Account{
		"Checking": {Name: "Checking", Kind: core.AccountAsset, TrackedInBudget: true},
	}
	spend := []core.Transaction{cardSpend(10, month, euros(-150), true)}

	t.Run("incomplete configuration", func(t *testing.T) {
		card := deferredCard()
		card.SettlementAccount = ""
		if got := SimulateSettlement(card, month, spend, nil, tracked); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})

	t.Run("empty cycle", func(t *testing.T) {
		if got := SimulateSettlement(deferredCard(), month, nil, nil, tracked); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})

	t.Run("debit account not tracked", func(t *testing.T) {
		if got := SimulateSettlement(deferredCard(), month, spend, nil, nil); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})

	t.Run("manual settlement already recorded", func(t *testing.T) {
		monthTx := []core.Transaction{
			{ID: "a", Date: month.Date(5), Amount: euros(-150), Account: "Checking",
				Kind: core.TxTransfer, TransferGroupID: "g1", Category: core.TransferCategory},
			{ID: "b", Date: month.Date(5), Amount: euros(150), Account: "Gold Card",
				Kind: core.TxTransfer, TransferGroupID: "g1", Category: core.TransferCategory},
		}
		if got := SimulateSettlement(deferredCard(), month, spend, monthTx, tracked); got != nil {
			t.Fatalf("got %+v, want nil", got)
		}
	})
}

func TestManualSettlementExistsLegacyFallback(t *testing.T) {
	card := deferredCard()
	month := core.NewYearMonth(2025, 3)

	// Legacy rows carry no transfer group; pairing falls back to the
	// description patterns.
	monthTx := []core.Transaction{
		{ID: "a", Date: month.Date(5), Amount: euros(-150), Account: "Checking",
			Category: core.TransferCategory, Description: "Card settlement to Gold Card"},
	}
	if !ManualSettlementExists(card, monthTx) {
		t.Fatal("legacy outgoing leg not detected")
	}

	monthTx = []core.Transaction{
		{ID: "b", Date: month.Date(5), Amount: euros(150), Account: "Gold Card",
			Category: core.TransferCategory, Description: "Card settlement from Checking"},
	}
	if !ManualSettlementExists(card, monthTx) {
		t.Fatal("legacy incoming leg not detected")
	}

	// A transfer between unrelated accounts is not a settlement.
	monthTx = []core.Transaction{
		{ID: "c", Date: month.Date(5), Amount: euros(-150), Account: "Checking",
			Kind: core.TxTransfer, TransferGroupID: "g2", Category: core.TransferCategory},
		{ID: "d", Date: month.Date(5), Amount: euros(150), Account: "Savings",
			Kind: core.TxTransfer, TransferGroupID: "g2", Category: core.TransferCategory},
	}
	if ManualSettlementExists(card, monthTx) {
		t.Fatal("unrelated transfer wrongly detected as settlement")
	}
}
