package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/config"
	"budget/internal/export"
	gsheet "budget/internal/export/google"
	mem "budget/internal/export/memory"
	applog "budget/internal/log"
	"budget/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting budget-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite repository to read transactions awaiting export
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Choose export backend; the worker has no purpose without one
	var exporter export.RowAppender
	switch cfg.ExportBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export backend initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		exporter = mem.New()
		logger.Info("In-memory export backend initialized")
	default:
		logger.Error("No export backend configured, set EXPORT_BACKEND to 'sheets' or 'memory'")
		os.Exit(1)
	}

	// Initialize AMQP client for consuming sync messages
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Shut down on SIGINT/SIGTERM or on consumer failure
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	handler := func(msg *amqp.TransactionSyncMessage) error {
		return exportTransaction(gctx, repo, exporter, msg.ID)
	}

	g.Go(func() error {
		return amqpClient.ConsumeTransactionSync(gctx, handler)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down budget-worker...")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Budget-worker shutdown complete")
}

// exportTransaction appends a single transaction to the export backend and
// marks it synced. A transaction deleted before the message arrives is
// dropped, not retried.
func exportTransaction(ctx context.Context, repo *storage.SQLiteRepository, exporter export.RowAppender, id int64) error {
	tx, err := repo.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Transaction no longer exists, skipping export", "id", id)
			return nil
		}
		return err
	}
	categoryName := ""
	if tx.CategoryID != 0 {
		category, err := repo.GetCategory(ctx, tx.CategoryID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		categoryName = category.Name
	}

	if err := exporter.Append(ctx, export.RowFromTransaction(tx, categoryName)); err != nil {
		return err
	}
	if err := repo.MarkSynced(ctx, id); err != nil {
		return err
	}

	slog.Info("Transaction exported", "id", id, "amount_cents", tx.Amount.Cents, "category", categoryName)
	return nil
}
