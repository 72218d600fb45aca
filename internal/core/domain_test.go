package core

import "testing"

func TestAccountSettlementConfigured(t *testing.T) {
	full := Account{
		Name: "Gold Card", Kind: AccountLiability,
		BillingDay: 2, CycleStartDay: 25, CycleEndDay: 24,
		SettlementAccount: "Checking",
	}
	if !full.SettlementConfigured() {
		t.Error("all four parameters present, should be configured")
	}

	missing := []Account{
		{Name: "c", Kind: AccountLiability, CycleStartDay: 25, CycleEndDay: 24, SettlementAccount: "Checking"},
		{Name: "c", Kind: AccountLiability, BillingDay: 2, CycleEndDay: 24, SettlementAccount: "Checking"},
		{Name: "c", Kind: AccountLiability, BillingDay: 2, CycleStartDay: 25, SettlementAccount: "Checking"},
		{Name: "c", Kind: AccountLiability, BillingDay: 2, CycleStartDay: 25, CycleEndDay: 24},
	}
	for i, a := range missing {
		if a.SettlementConfigured() {
			t.Errorf("case %d: missing parameter, should not be configured", i)
		}
	}

	asset := full
	asset.Kind = AccountAsset
	if asset.SettlementConfigured() {
		t.Error("asset accounts are never settlement cards")
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	good := RecurringRule{
		ID: "r1", Active: true, Description: "Internet",
		Amount: Money{Cents: -5000}, Category: "Internet", Account: "Checking",
		Kind: TxOrdinary, Periodicity: Monthly, DueDaySpec: "10",
		StartDate: NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RecurringRule)
	}{
		{"zero start date", func(r *RecurringRule) { r.StartDate = Date{} }},
		{"end before start", func(r *RecurringRule) { r.EndDate = NewDate(2023, 1, 1) }},
		{"bad periodicity", func(r *RecurringRule) { r.Periodicity = "fortnightly" }},
		{"empty description", func(r *RecurringRule) { r.Description = " " }},
		{"empty category", func(r *RecurringRule) { r.Category = "" }},
		{"empty account", func(r *RecurringRule) { r.Account = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	transfer := RecurringRule{
		ID: "r2", Active: true, Description: "Savings sweep",
		Amount: Money{Cents: 10000}, Kind: TxTransfer,
		Source: "Checking", Destination: "Savings",
		Periodicity: Monthly, DueDaySpec: "1",
		StartDate: NewDate(2024, 1, 1),
	}
	if err := transfer.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	transfer.Destination = ""
	if err := transfer.Validate(); err != ErrIncompleteTransferRule {
		t.Errorf("expected ErrIncompleteTransferRule, got %v", err)
	}
}

func TestBudgetedCategorySignedPlanned(t *testing.T) {
	exp := BudgetedCategory{Category: "Food", Planned: Money{Cents: 30000}, Type: CategoryExpense}
	if got := exp.SignedPlanned(); got.Cents != -30000 {
		t.Errorf("expense planned = %d, want -30000", got.Cents)
	}
	inc := BudgetedCategory{Category: "Salary", Planned: Money{Cents: 250000}, Type: CategoryIncome}
	if got := inc.SignedPlanned(); got.Cents != 250000 {
		t.Errorf("income planned = %d, want 250000", got.Cents)
	}
}

func TestMonthlyLedgerHasCategory(t *testing.T) {
	l := &MonthlyLedger{
		Month:      YearMonth{2024, 3},
		Categories: []BudgetedCategory{{Category: "Internet", Type: CategoryExpense}},
	}
	if !l.HasCategory("internet") || !l.HasCategory("INTERNET") {
		t.Error("category lookup must be case-insensitive")
	}
	if l.HasCategory("Food") {
		t.Error("unexpected category")
	}
}

func TestMonthlyLedgerRecurrenceIDs(t *testing.T) {
	l := &MonthlyLedger{
		Month: YearMonth{2024, 3},
		Transactions: []Transaction{
			{ID: "a", Origin: OriginRecurring, RecurrenceID: "r1_20240310"},
			{ID: "b", Origin: OriginManual},
			{ID: "c", Origin: OriginRecurring, RecurrenceID: "r2_20240301"},
		},
	}
	ids := l.RecurrenceIDs()
	if len(ids) != 2 || !ids["r1_20240310"] || !ids["r2_20240301"] {
		t.Errorf("got %v", ids)
	}
}

func TestRealizedByCategory(t *testing.T) {
	txs := []Transaction{
		{Category: "Food", Amount: Money{Cents: -1200}},
		{Category: "Food", Amount: Money{Cents: -800}},
		{Category: "Salary", Amount: Money{Cents: 250000}},
		{Category: TransferCategory, Amount: Money{Cents: -5000}, Kind: TxTransfer},
	}
	realized := RealizedByCategory(txs)
	if got := realized["Food"].Cents; got != -2000 {
		t.Errorf("Food = %d, want -2000", got)
	}
	if got := realized["Salary"].Cents; got != 250000 {
		t.Errorf("Salary = %d, want 250000", got)
	}
	if _, ok := realized[TransferCategory]; ok {
		t.Error("transfers must be excluded")
	}
}
