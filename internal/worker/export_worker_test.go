package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/amqp"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/export/memory"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/storage"
)

type fakeStore struct {
	txs        map[string]core.Transaction
	exported   map[string]bool
	exportErrs map[string]bool
}

func newFakeStore(txs ...core.Transaction) *fakeStore {
	s := &fakeStore{
		txs:        make(map[string]core.Transaction),
		exported:   make(map[string]bool),
		exportErrs: make(map[string]bool),
	}
	for _, tx := range txs {
		s.txs[tx.ID] = tx
	}
	return s
}

func (s *fakeStore) TransactionByID(ctx context.Context, id string) (core.Transaction, error) {
	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, errors.New("not found")
	}
	return tx, nil
}

func (s *fakeStore) PendingExportTransactions(ctx context.Context, limit int) ([]storage.PendingExportTransaction, error) {
	var pending []storage.PendingExportTransaction
	for id := range s.txs {
		if !s.exported[id] && len(pending) < limit {
			pending = append(pending, storage.PendingExportTransaction{ID: id})
		}
	}
	return pending, nil
}

func (s *fakeStore) MarkExported(ctx context.Context, id string) error {
	s.exported[id] = true
	return nil
}

func (s *fakeStore) MarkExportError(ctx context.Context, id string) error {
	s.exportErrs[id] = true
	return nil
}

func sampleTx(id string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Date:        core.NewDate(2025, 6, 10),
		Description: "Groceries",
		Amount:      core.Money{Cents: -4500},
		Category:    "Food",
		Account:     "Checking",
		Kind:        core.TxOrdinary,
	}
}

func TestHandleExportMessageTransactionCreated(t *testing.T) {
	store := newFakeStore(sampleTx("a"))
	sink := memory.New()
	w := NewExportWorker(store, sink, 10)

	msg := amqp.NewTransactionCreatedMessage("a")
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
	if !store.exported["a"] {
		t.Error("transaction not marked exported")
	}
	if len(sink.Exported()) != 1 {
		t.Errorf("sink rows = %d, want 1", len(sink.Exported()))
	}
}

func TestHandleExportMessageLedgerChangedSweepsPending(t *testing.T) {
	store := newFakeStore(sampleTx("a"), sampleTx("b"))
	sink := memory.New()
	w := NewExportWorker(store, sink, 10)

	msg := amqp.NewLedgerChangedMessage("2025-06", 2)
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleExportMessage: %v", err)
	}
	if len(sink.Exported()) != 2 {
		t.Errorf("sink rows = %d, want 2", len(sink.Exported()))
	}
}

func TestHandleExportMessageUnknownKind(t *testing.T) {
	w := NewExportWorker(newFakeStore(), memory.New(), 10)
	if err := w.HandleExportMessage(context.Background(), &amqp.ExportMessage{Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown message kind")
	}
}

func TestExportFailureMarksError(t *testing.T) {
	// The memory sink rejects invalid transactions.
	broken := sampleTx("a")
	broken.Description = ""
	store := newFakeStore(broken)
	w := NewExportWorker(store, memory.New(), 10)

	msg := amqp.NewTransactionCreatedMessage("a")
	if err := w.HandleExportMessage(context.Background(), msg); err == nil {
		t.Fatal("expected export error")
	}
	if !store.exportErrs["a"] {
		t.Error("transaction not marked with export error")
	}
	if store.exported["a"] {
		t.Error("failed transaction must not be marked exported")
	}
}

func TestStartupCheckDrainsBacklog(t *testing.T) {
	store := newFakeStore(sampleTx("a"), sampleTx("b"), sampleTx("c"))
	sink := memory.New()
	w := NewExportWorker(store, sink, 1)

	// Startup check uses a widened batch, so all three go out even with
	// batch size 1.
	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(sink.Exported()) != 3 {
		t.Errorf("sink rows = %d, want 3", len(sink.Exported()))
	}
}
