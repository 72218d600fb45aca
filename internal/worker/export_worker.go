package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/amqp"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/export"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/storage"
)

// Store is what the export worker needs from persistence.
type Store interface {
	TransactionByID(ctx context.Context, id string) (core.Transaction, error)
	PendingExportTransactions(ctx context.Context, limit int) ([]storage.PendingExportTransaction, error)
	MarkExported(ctx context.Context, id string) error
	MarkExportError(ctx context.Context, id string) error
}

// ExportWorker pushes transactions to the configured sheet. AMQP
// messages drive the fast path; a periodic pending scan recovers rows
// whose messages were lost.
type ExportWorker struct {
	storage   Store
	writer    export.TransactionWriter
	batchSize int
}

func NewExportWorker(storage Store, writer export.TransactionWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single message from the export queue.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Kind {
	case amqp.KindTransactionCreated:
		return w.exportOne(ctx, msg.TransactionID)
	case amqp.KindLedgerChanged:
		// A materialization run may generate many rows; sweep the pending
		// set instead of chasing individual IDs.
		slog.InfoContext(ctx, "Ledger changed, sweeping pending exports",
			applog.FieldMonth, msg.Month,
			"generated", msg.Generated)
		return w.ProcessPending(ctx)
	default:
		return fmt.Errorf("unknown export message kind: %q", msg.Kind)
	}
}

// ProcessPending exports any transactions that have not reached the
// sheet yet. This is the backup mechanism for lost AMQP messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", applog.FieldCount, len(pending))

	for _, p := range pending {
		if err := w.exportOne(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", applog.FieldTransactionID, p.ID, applog.FieldError, err)
			continue
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once at worker start to
// recover from downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingExportTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending exports for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		applog.FieldCount, len(pending))

	exported := 0
	failed := 0
	for _, p := range pending {
		if err := w.exportOne(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				applog.FieldTransactionID, p.ID, applog.FieldError, err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// Run drives the worker: the AMQP consumer and the periodic pending
// sweep run concurrently until the context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.ConsumeWithReconnect(ctx, func(msg *amqp.ExportMessage) error {
			return w.HandleExportMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					slog.ErrorContext(ctx, "Pending export sweep failed", applog.FieldError, err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *ExportWorker) exportOne(ctx context.Context, id string) error {
	tx, err := w.storage.TransactionByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.writer.AppendTransaction(ctx, tx)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", applog.FieldTransactionID, id, applog.FieldError, markErr)
		}
		return fmt.Errorf("append to sheet: %w", err)
	}

	if err := w.storage.MarkExported(ctx, id); err != nil {
		// The export itself worked; the flag catches up on the next sweep.
		slog.ErrorContext(ctx, "Failed to mark as exported", applog.FieldTransactionID, id, applog.FieldError, err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		applog.FieldTransactionID, id,
		"export_ref", ref,
		applog.FieldAmountCents, tx.Amount.Cents)
	return nil
}
