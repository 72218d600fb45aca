package engine

import (
	"context"
	"testing"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func checkingAccount() core.Account {
	return core.Account{
		Name:            "Checking",
		Kind:            core.AccountAsset,
		Balance:         euros(1000),
		TrackedInBudget: true,
	}
}

func rentRule() core.RecurringRule {
	return core.RecurringRule{
		ID:          "rent",
		Active:      true,
		Description: "Rent",
		Amount:      euros(-800),
		Category:    "Housing",
		Account:     "Checking",
		Kind:        core.TxOrdinary,
		Periodicity: core.Monthly,
		DueDaySpec:  "1",
		StartDate:   date(2024, 1, 1),
	}
}

func TestMaterializeGeneratesAndIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	store.rules = []core.RecurringRule{rentRule()}
	events := &memPublisher{}
	m := NewMaterializer(store, events)
	month := core.NewYearMonth(2025, 6)

	n, err := m.Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1", n)
	}

	ledger := store.ledgers[month.Key()]
	if len(ledger.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1", len(ledger.Transactions))
	}
	tx := ledger.Transactions[0]
	if tx.RecurrenceID != "rent_20250601" {
		t.Errorf("RecurrenceID = %q, want rent_20250601", tx.RecurrenceID)
	}
	if tx.Origin != core.OriginRecurring {
		t.Errorf("Origin = %q, want %q", tx.Origin, core.OriginRecurring)
	}
	if tx.Amount != euros(-800) {
		t.Errorf("Amount = %v, want %v", tx.Amount, euros(-800))
	}
	if events.ledgerChanges != 1 {
		t.Errorf("ledger change events = %d, want 1", events.ledgerChanges)
	}

	// Second run generates nothing and does not save.
	savesBefore := store.saves
	n, err = m.Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	if n != 0 {
		t.Fatalf("second run generated = %d, want 0", n)
	}
	if store.saves != savesBefore {
		t.Errorf("second run saved the ledger, want no save")
	}
	if len(store.ledgers[month.Key()].Transactions) != 1 {
		t.Errorf("transactions after rerun = %d, want 1", len(store.ledgers[month.Key()].Transactions))
	}
}

func TestMaterializeSkipsRuleWhenMonthlyInstanceExists(t *testing.T) {
	// A monthly rule with an instance already generated on another day of
	// the month must not fire again, even if the due day differs.
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	rule := rentRule()
	rule.DueDaySpec = "5"
	store.rules = []core.RecurringRule{rule}
	month := core.NewYearMonth(2025, 6)
	store.ledgers[month.Key()] = &core.MonthlyLedger{
		Month: month,
		Transactions: []core.Transaction{{
			ID:           "x",
			Date:         date(2025, 6, 1),
			Description:  "Rent",
			Amount:       euros(-800),
			Category:     "Housing",
			Account:      "Checking",
			Origin:       core.OriginRecurring,
			RecurrenceID: "rent_20250601",
		}},
	}

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 0 {
		t.Fatalf("generated = %d, want 0", n)
	}
}

func TestMaterializeRuleIDPrefixDoesNotCollide(t *testing.T) {
	// An instance of rule "rent_paris" must not suppress rule "rent":
	// the instance suffix has to be exactly the eight-digit due date.
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	store.rules = []core.RecurringRule{rentRule()}
	month := core.NewYearMonth(2025, 6)
	store.ledgers[month.Key()] = &core.MonthlyLedger{
		Month: month,
		Transactions: []core.Transaction{{
			ID:           "x",
			Date:         date(2025, 6, 1),
			Description:  "Rent Paris",
			Amount:       euros(-1200),
			Category:     "Housing",
			Account:      "Checking",
			Origin:       core.OriginRecurring,
			RecurrenceID: "rent_paris_20250601",
		}},
	}

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1", n)
	}
}

func TestMaterializeClampsDueDay(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	rule := rentRule()
	rule.ID = "sub"
	rule.DueDaySpec = "31"
	store.rules = []core.RecurringRule{rule}

	month := core.NewYearMonth(2025, 2)
	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1", n)
	}
	tx := store.ledgers[month.Key()].Transactions[0]
	if got := tx.Date.ISO(); got != "2025-02-28" {
		t.Errorf("date = %s, want 2025-02-28", got)
	}
	if tx.RecurrenceID != "sub_20250228" {
		t.Errorf("RecurrenceID = %q, want sub_20250228", tx.RecurrenceID)
	}
}

func TestMaterializeRespectsValidityWindow(t *testing.T) {
	tests := []struct {
		name  string
		start core.Date
		end   core.Date
		month core.YearMonth
		want  int
	}{
		{"before start", date(2025, 7, 1), core.Date{}, core.NewYearMonth(2025, 6), 0},
		{"after end", date(2024, 1, 1), date(2025, 5, 31), core.NewYearMonth(2025, 6), 0},
		{"inside window", date(2024, 1, 1), date(2025, 12, 31), core.NewYearMonth(2025, 6), 1},
		{"open ended", date(2024, 1, 1), core.Date{}, core.NewYearMonth(2030, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.accounts = []core.Account{checkingAccount()}
			rule := rentRule()
			rule.StartDate = tt.start
			rule.EndDate = tt.end
			store.rules = []core.RecurringRule{rule}

			n, err := NewMaterializer(store, nil).Materialize(context.Background(), tt.month)
			if err != nil {
				t.Fatalf("Materialize: %v", err)
			}
			if n != tt.want {
				t.Fatalf("generated = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestMaterializeTransferRule(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{
		checkingAccount(),
		{Name: "Savings", Kind: core.AccountAsset, Balance: euros(5000), TrackedInBudget: true},
	}
	store.rules = []core.RecurringRule{{
		ID:          "save",
		Active:      true,
		Description: "Monthly savings",
		Amount:      euros(200),
		Kind:        core.TxTransfer,
		Source:      "Checking",
		Destination: "Savings",
		Periodicity: core.Monthly,
		DueDaySpec:  "2",
		StartDate:   date(2024, 1, 2),
	}}
	month := core.NewYearMonth(2025, 6)

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1 instance", n)
	}

	txs := store.ledgers[month.Key()].Transactions
	if len(txs) != 2 {
		t.Fatalf("transactions = %d, want 2 legs", len(txs))
	}
	if txs[0].Amount != euros(-200) || txs[1].Amount != euros(200) {
		t.Errorf("leg amounts = %v / %v, want -200 / +200", txs[0].Amount, txs[1].Amount)
	}
	if txs[0].TransferGroupID == "" || txs[0].TransferGroupID != txs[1].TransferGroupID {
		t.Errorf("legs must share a transfer group, got %q and %q", txs[0].TransferGroupID, txs[1].TransferGroupID)
	}
	for _, tx := range txs {
		if tx.Category != core.TransferCategory {
			t.Errorf("category = %q, want %q", tx.Category, core.TransferCategory)
		}
		if !tx.IsTransfer() {
			t.Errorf("transaction %q not marked as transfer", tx.ID)
		}
	}
	// Transfers never create budget categories.
	if len(store.ledgers[month.Key()].Categories) != 0 {
		t.Errorf("categories = %d, want 0", len(store.ledgers[month.Key()].Categories))
	}
}

func TestMaterializeAutoCreatesCategory(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	store.rules = []core.RecurringRule{rentRule()}
	month := core.NewYearMonth(2025, 6)

	if _, err := NewMaterializer(store, nil).Materialize(context.Background(), month); err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	cats := store.ledgers[month.Key()].Categories
	if len(cats) != 1 {
		t.Fatalf("categories = %d, want 1", len(cats))
	}
	cat := cats[0]
	if cat.Category != "Housing" {
		t.Errorf("category = %q, want Housing", cat.Category)
	}
	if cat.Type != core.CategoryExpense {
		t.Errorf("type = %q, want %q", cat.Type, core.CategoryExpense)
	}
	if cat.Planned != euros(800) {
		t.Errorf("planned = %v, want 800 magnitude", cat.Planned)
	}
	if cat.Settled {
		t.Error("auto-created category must not be settled")
	}
}

func TestMaterializeSkipsBrokenRuleAndContinues(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	broken := rentRule()
	broken.ID = "broken"
	broken.DueDaySpec = "not-a-day"
	store.rules = []core.RecurringRule{broken, rentRule()}
	month := core.NewYearMonth(2025, 6)

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 1 {
		t.Fatalf("generated = %d, want 1 (healthy rule only)", n)
	}
}

func TestMaterializeWeeklyRule(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	store.rules = []core.RecurringRule{{
		ID:          "groceries",
		Active:      true,
		Description: "Weekly groceries",
		Amount:      euros(-60),
		Category:    "Food",
		Account:     "Checking",
		Kind:        core.TxOrdinary,
		Periodicity: core.Weekly,
		DueDaySpec:  "6", // Saturday
		StartDate:   date(2025, 1, 1),
	}}
	month := core.NewYearMonth(2025, 6)

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), month)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// Saturdays of June 2025: 7, 14, 21, 28.
	if n != 4 {
		t.Fatalf("generated = %d, want 4", n)
	}
}

func TestMaterializeInactiveRule(t *testing.T) {
	store := newMemStore()
	store.accounts = []core.Account{checkingAccount()}
	rule := rentRule()
	rule.Active = false
	store.rules = []core.RecurringRule{rule}

	n, err := NewMaterializer(store, nil).Materialize(context.Background(), core.NewYearMonth(2025, 6))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if n != 0 {
		t.Fatalf("generated = %d, want 0", n)
	}
}
