package main

import (
	"context"
	"time"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/amqp"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/cli"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/core"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/engine"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

// materialize-worker keeps the current month's recurring transactions
// materialized without anyone opening the app. Materialization is
// idempotent, so running it on a timer is safe.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting materialize-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.OpenRepository(cfg, logger)
	defer repo.Close()

	var events engine.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, generated transactions will only export via sweep", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
		}
	}

	materializer := engine.NewMaterializer(repo, events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Materializer configured",
		"interval", cfg.MaterializeInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	runOnce := func(now time.Time) {
		month := core.NewYearMonth(now.Year(), int(now.Month()))
		generated, err := materializer.Materialize(ctx, month)
		if err != nil {
			logger.Error("Materialization failed", "month", month.Key(), applog.FieldError, err)
			return
		}
		logger.Info("Materialization complete",
			"month", month.Key(),
			"generated", generated)
	}

	runOnce(time.Now())

	ticker := time.NewTicker(cfg.MaterializeInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runOnce(now)
			}
		}
	}()

	select {
	case sig := <-cli.NotifyShutdown():
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	logger.Info("Materialize-worker shutdown complete")
}
