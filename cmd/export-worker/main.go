package main

import (
	"context"
	"errors"
	"os"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/amqp"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/cli"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/export"
	gsheet "github.com/Philou1985/SLC-APP-BUDGET/internal/export/google"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/export/memory"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/worker"
)

// export-worker consumes ledger change events and mirrors transactions
// to a Google Sheet, with a periodic sweep catching anything the broker
// dropped.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentExport)

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.OpenRepository(cfg, logger)
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Without Sheets credentials the worker still drains the queue into
	// an in-memory sink, which keeps local development honest.
	var writer export.TransactionWriter
	if cfg.ExportEnabled() {
		client, err := gsheet.NewClient(ctx, gsheet.Options{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = memory.New()
		logger.Info("Google Sheets disabled, exporting to in-memory sink")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, writer, cfg.ExportBatchSize)

	logger.Info("Performing startup export check")
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", applog.FieldError, err)
		// Keep going; the consumer and the sweep will retry.
	}

	go func() {
		sig := <-cli.NotifyShutdown()
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := exportWorker.Run(ctx, amqpClient, cfg.ExportInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Export-worker shutdown complete")
}
