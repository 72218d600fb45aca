package memory

import (
	"context"
	"testing"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

func TestAppendTransaction(t *testing.T) {
	store := New()
	ctx := context.Background()

	tx := core.Transaction{
		ID:          "a",
		Date:        core.NewDate(2025, 6, 10),
		Description: "Groceries",
		Amount:      core.Money{Cents: -4500},
		Category:    "Food",
		Account:     "Checking",
		Kind:        core.TxOrdinary,
	}
	ref, err := store.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}
	if got := store.Exported(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("exported = %+v", got)
	}

	// Invalid transactions are rejected.
	tx.Description = ""
	if _, err := store.AppendTransaction(ctx, tx); err == nil {
		t.Error("expected validation error")
	}
}
