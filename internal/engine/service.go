package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

// TransactionService handles manual bookkeeping: creating transactions
// and transfers, recording card settlements and reconciling rows against
// bank statements.
type TransactionService struct {
	store    Store
	clearing ClearingStore
	events   Publisher
}

func NewTransactionService(store Store, clearing ClearingStore, events Publisher) *TransactionService {
	return &TransactionService{store: store, clearing: clearing, events: events}
}

// CreateTransaction validates and appends an ordinary transaction to its
// month's ledger, auto-creating the budget category when needed.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Kind == "" {
		tx.Kind = core.TxOrdinary
	}
	if tx.Origin == "" {
		tx.Origin = core.OriginManual
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	month := core.YearMonthOf(tx.Date)
	ledger, err := s.store.LoadMonthlyLedger(ctx, month)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load ledger %s: %w", month, err)
	}

	ledger.Transactions = append(ledger.Transactions, tx)
	if !tx.IsTransfer() {
		ensureCategory(ledger, tx.Category, tx.Account, tx.Amount)
	}
	if err := s.store.SaveMonthlyLedger(ctx, ledger); err != nil {
		return core.Transaction{}, fmt.Errorf("save ledger %s: %w", month, err)
	}

	s.notifyCreated(ctx, tx)
	slog.InfoContext(ctx, "Transaction created",
		applog.FieldTransactionID, tx.ID,
		applog.FieldAccount, tx.Account,
		applog.FieldAmountCents, tx.Amount.Cents)
	return tx, nil
}

// CreateTransfer records a movement between two accounts as a pair of
// transactions sharing a transfer group, one negative leg on the source
// and one positive leg on the destination.
func (s *TransactionService) CreateTransfer(ctx context.Context, date core.Date, source, destination string, amount core.Money, note string) ([]core.Transaction, error) {
	if source == "" || destination == "" {
		return nil, core.ErrEmptyAccount
	}
	if amount.IsZero() {
		return nil, core.ErrInvalidAmount
	}

	magnitude := amount.Abs()
	groupID := uuid.NewString()
	if note == "" {
		note = "Transfer"
	}

	legs := []core.Transaction{
		{
			ID:              uuid.NewString(),
			Date:            date,
			Description:     fmt.Sprintf("%s to %s", note, destination),
			Amount:          magnitude.Neg(),
			Category:        core.TransferCategory,
			Account:         source,
			Kind:            core.TxTransfer,
			TransferGroupID: groupID,
			Origin:          core.OriginManual,
		},
		{
			ID:              uuid.NewString(),
			Date:            date,
			Description:     fmt.Sprintf("%s from %s", note, source),
			Amount:          magnitude,
			Category:        core.TransferCategory,
			Account:         destination,
			Kind:            core.TxTransfer,
			TransferGroupID: groupID,
			Origin:          core.OriginManual,
		},
	}

	month := core.YearMonthOf(date)
	ledger, err := s.store.LoadMonthlyLedger(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", month, err)
	}
	ledger.Transactions = append(ledger.Transactions, legs...)
	if err := s.store.SaveMonthlyLedger(ctx, ledger); err != nil {
		return nil, fmt.Errorf("save ledger %s: %w", month, err)
	}

	for _, leg := range legs {
		s.notifyCreated(ctx, leg)
	}
	slog.InfoContext(ctx, "Transfer created",
		"source", source,
		"destination", destination,
		applog.FieldAmountCents, magnitude.Cents)
	return legs, nil
}

// RecordCardSettlement books the real monthly payoff of a deferred-debit
// card: a transfer from the settlement account to the card for the
// card's current billing-cycle total. Once recorded, the projection
// stops simulating that card's settlement for the month.
func (s *TransactionService) RecordCardSettlement(ctx context.Context, cardName string, month core.YearMonth) ([]core.Transaction, error) {
	card, err := s.clearing.AccountByName(ctx, cardName)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", cardName, err)
	}
	if !card.SettlementConfigured() {
		return nil, core.ErrIncompleteCardSettlementConfig
	}

	all, err := s.store.LoadAllTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	cycle := cardCycleSum(card, month, all)
	if cycle.IsZero() {
		slog.InfoContext(ctx, "Card settlement skipped, empty cycle", "card", cardName, applog.FieldMonth, month.Key())
		return nil, nil
	}

	date := month.Date(card.BillingDay)
	return s.CreateTransfer(ctx, date, card.SettlementAccount, card.Name, cycle.Abs(),
		fmt.Sprintf("Card settlement %s", month.Key()))
}

// ClearTransactions marks the given transactions as reconciled and
// folds each amount into its account's stored balance. A liability's
// balance grows when money flows out, so the amount is subtracted there
// and added on assets.
func (s *TransactionService) ClearTransactions(ctx context.Context, ids []string) error {
	txs, err := s.clearing.TransactionsByID(ctx, ids)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	for _, tx := range txs {
		if tx.Cleared {
			continue
		}
		account, err := s.clearing.AccountByName(ctx, tx.Account)
		if err != nil {
			return fmt.Errorf("account %q: %w", tx.Account, err)
		}
		balance := account.Balance
		if account.Kind == core.AccountLiability {
			balance = balance.Sub(tx.Amount)
		} else {
			balance = balance.Add(tx.Amount)
		}
		if err := s.clearing.UpdateAccountBalance(ctx, account.Name, balance); err != nil {
			return fmt.Errorf("update balance %q: %w", account.Name, err)
		}
		if err := s.clearing.MarkTransactionCleared(ctx, tx.ID); err != nil {
			return fmt.Errorf("mark cleared %q: %w", tx.ID, err)
		}
		slog.InfoContext(ctx, "Transaction cleared",
			applog.FieldTransactionID, tx.ID,
			applog.FieldAccount, account.Name,
			"balance_cents", balance.Cents)
	}
	return nil
}

// DeleteTransaction removes a transaction from its month's ledger. When
// the row is one leg of a transfer the sibling leg is removed too, so a
// transfer never survives half-deleted.
func (s *TransactionService) DeleteTransaction(ctx context.Context, month core.YearMonth, id string) error {
	ledger, err := s.store.LoadMonthlyLedger(ctx, month)
	if err != nil {
		return fmt.Errorf("load ledger %s: %w", month, err)
	}

	var groupID string
	for _, tx := range ledger.Transactions {
		if tx.ID == id {
			groupID = tx.TransferGroupID
			break
		}
	}

	kept := ledger.Transactions[:0]
	removed := 0
	for _, tx := range ledger.Transactions {
		if tx.ID == id || (groupID != "" && tx.TransferGroupID == groupID) {
			removed++
			continue
		}
		kept = append(kept, tx)
	}
	if removed == 0 {
		return fmt.Errorf("transaction %q not found in %s", id, month)
	}
	ledger.Transactions = kept

	if err := s.store.SaveMonthlyLedger(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger %s: %w", month, err)
	}
	slog.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id, applog.FieldMonth, month.Key(), "removed", removed)
	return nil
}

func (s *TransactionService) notifyCreated(ctx context.Context, tx core.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishTransactionCreated(ctx, tx); err != nil {
		slog.WarnContext(ctx, "Failed to publish transaction event", applog.FieldTransactionID, tx.ID, applog.FieldError, err)
	}
}
