package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/Philou1985/SLC-APP-BUDGET/internal/amqp"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/cli"
	"github.com/Philou1985/SLC-APP-BUDGET/internal/engine"
	apphttp "github.com/Philou1985/SLC-APP-BUDGET/internal/http"
	applog "github.com/Philou1985/SLC-APP-BUDGET/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.OpenRepository(cfg, logger)
	defer repo.Close()

	// AMQP is optional: without it the export worker never hears about
	// new transactions until its periodic sweep.
	var events engine.Publisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without eventing", applog.FieldError, err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled")
	}

	transactions := engine.NewTransactionService(repo, repo, events)
	materializer := engine.NewMaterializer(repo, events)
	calculator := engine.NewCalculator(repo)

	srv := apphttp.NewServer(":"+cfg.Port, repo, transactions, materializer, calculator)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-cli.NotifyShutdown()
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting budget server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
