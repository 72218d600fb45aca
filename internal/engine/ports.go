// Package engine implements the monthly projection and recurrence
// machinery: materializing recurring rules into dated transactions,
// simulating deferred-card settlements and projecting end-of-month
// balances per account.
//
// The engine is stateless between calls. It operates on data loaded from
// a Store for the duration of one materialize+project cycle and assumes
// the store hands it a consistent snapshot.
package engine

import (
	"context"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
)

// Ports for the persistence collaborator.
type (
	// Store is what the engine needs from persistence. A monthly ledger
	// is the unit of mutation: SaveMonthlyLedger replaces the whole
	// month atomically.
	Store interface {
		LoadAccounts(ctx context.Context) ([]core.Account, error)
		LoadRecurringRules(ctx context.Context) ([]core.RecurringRule, error)
		// LoadMonthlyLedger returns the ledger for the month, creating an
		// empty one lazily when the month has never been written.
		LoadMonthlyLedger(ctx context.Context, month core.YearMonth) (*core.MonthlyLedger, error)
		// LoadAllTransactions returns transactions across all months, used
		// for settlement-window and carry-forward calculations.
		LoadAllTransactions(ctx context.Context) ([]core.Transaction, error)
		SaveMonthlyLedger(ctx context.Context, ledger *core.MonthlyLedger) error
	}

	// ClearingStore adds the fine-grained operations transaction clearing
	// needs, since clearing touches rows across months and mutates
	// account balances.
	ClearingStore interface {
		TransactionsByID(ctx context.Context, ids []string) ([]core.Transaction, error)
		MarkTransactionCleared(ctx context.Context, id string) error
		AccountByName(ctx context.Context, name string) (core.Account, error)
		UpdateAccountBalance(ctx context.Context, name string, balance core.Money) error
	}

	// Publisher notifies downstream consumers (the export worker) of
	// ledger changes. Implementations must be safe to skip: a nil
	// Publisher disables eventing.
	Publisher interface {
		PublishLedgerChanged(ctx context.Context, month core.YearMonth, generated int) error
		PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
	}
)
