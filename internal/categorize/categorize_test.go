package categorize

import (
	"fmt"
	"testing"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func tx(day int, description, category string, euros int64) core.Transaction {
	return core.Transaction{
		ID:          fmt.Sprintf("%s-%d", description, day),
		Date:        core.NewDate(2025, 6, day),
		Description: description,
		Amount:      core.Money{Cents: euros * 100},
		Category:    category,
		Account:     "Checking",
		Kind:        core.TxOrdinary,
		Origin:      core.OriginManual,
	}
}

func TestKeywords(t *testing.T) {
	tests := []struct {
		description string
		want        []string
	}{
		{"Card payment GROCERY-MART #4821", []string{"grocerymart"}},
		{"Transfer to savings", []string{"savings"}},
		{"payment 12345", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			got := Keywords(tt.description)
			if len(got) != len(tt.want) {
				t.Fatalf("Keywords(%q) = %v, want %v", tt.description, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("keyword %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCategorizer_Suggest(t *testing.T) {
	c := NewCategorizer()
	c.Train([]core.Transaction{
		tx(3, "Grocerymart weekly shop", "Food", -62),
		tx(5, "Cinema tickets", "Leisure", -24),
		{Description: "Internal move", Category: core.TransferCategory, Kind: core.TxTransfer},
	})

	tests := []struct {
		description string
		want        string
	}{
		{"Card payment grocerymart", "Food"},
		{"CINEMA downtown", "Leisure"},
		{"Internal move", ""},
		{"Unknown merchant", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.Suggest(tt.description); got != tt.want {
			t.Errorf("Suggest(%q) = %q, want %q", tt.description, got, tt.want)
		}
	}
}

func TestCategorizer_TrainIgnoresTransfers(t *testing.T) {
	c := NewCategorizer()
	c.Train([]core.Transaction{
		{Description: "Savings top-up", Category: core.TransferCategory, Kind: core.TxTransfer},
	})
	if got := c.Suggest("Savings top-up"); got != "" {
		t.Errorf("Suggest learned from transfer leg: %q", got)
	}
}

func TestDetectRecurringCandidates(t *testing.T) {
	c := NewCategorizer()

	t.Run("stable monthly group becomes a candidate", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(1, "Netflix subscription", "Leisure", -15),
			tx(2, "Netflix subscription", "Leisure", -15),
			tx(1, "Netflix subscription", "Leisure", -16),
		}
		got := c.DetectRecurringCandidates(transactions, nil)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
		cand := got[0]
		if cand.Description != "Netflix subscription" {
			t.Errorf("Description = %q", cand.Description)
		}
		if cand.DueDay != 1 {
			t.Errorf("DueDay = %d, want 1", cand.DueDay)
		}
		if cand.Category != "Leisure" {
			t.Errorf("Category = %q", cand.Category)
		}
		if cand.Type != core.CategoryExpense {
			t.Errorf("Type = %q, want Expense", cand.Type)
		}
		// average of -15, -15, -16 euros
		if cand.Amount.Cents != -1533 {
			t.Errorf("Amount = %d cents, want -1533", cand.Amount.Cents)
		}
	})

	t.Run("fewer than three occurrences", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(1, "Gym membership", "Health", -30),
			tx(1, "Gym membership", "Health", -30),
		}
		if got := c.DetectRecurringCandidates(transactions, nil); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("volatile amounts", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(1, "Grocerymart", "Food", -40),
			tx(1, "Grocerymart", "Food", -80),
			tx(1, "Grocerymart", "Food", -55),
		}
		if got := c.DetectRecurringCandidates(transactions, nil); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("scattered days", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(1, "Fuelstop", "Car", -50),
			tx(12, "Fuelstop", "Car", -50),
			tx(25, "Fuelstop", "Car", -50),
		}
		if got := c.DetectRecurringCandidates(transactions, nil); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("already covered by a rule", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(1, "Netflix subscription", "Leisure", -15),
			tx(1, "Netflix subscription", "Leisure", -15),
			tx(1, "Netflix subscription", "Leisure", -15),
		}
		rules := []core.RecurringRule{{ID: "netflix", Description: "Netflix monthly"}}
		if got := c.DetectRecurringCandidates(transactions, rules); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("generated rows are ignored", func(t *testing.T) {
		generated := tx(1, "Rent", "Housing", -800)
		generated.Origin = core.OriginRecurring
		transactions := []core.Transaction{generated, generated, generated}
		if got := c.DetectRecurringCandidates(transactions, nil); len(got) != 0 {
			t.Errorf("candidates = %d, want 0", len(got))
		}
	})

	t.Run("income group", func(t *testing.T) {
		transactions := []core.Transaction{
			tx(28, "Freelance retainer", "Salary", 500),
			tx(28, "Freelance retainer", "Salary", 500),
			tx(27, "Freelance retainer", "Salary", 500),
		}
		got := c.DetectRecurringCandidates(transactions, nil)
		if len(got) != 1 {
			t.Fatalf("candidates = %d, want 1", len(got))
		}
		if got[0].Type != core.CategoryIncome {
			t.Errorf("Type = %q, want Income", got[0].Type)
		}
		if got[0].DueDay != 28 {
			t.Errorf("DueDay = %d, want 28", got[0].DueDay)
		}
	})
}
