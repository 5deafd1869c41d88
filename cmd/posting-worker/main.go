package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budget/internal/amqp"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/services"
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

	logger.Info("Starting posting-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite repository
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize AMQP client so posted transactions flow to the budget-worker
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - posted transactions will sync via budget-worker")
		}
	} else {
		logger.Info("AMQP disabled - posted transactions will not be synced")
	}

	// TransactionService persists postings and publishes sync messages
	txService := services.NewTransactionService(repo, amqpClient)
	defer txService.Close()

	processor := services.NewPostingProcessor(repo, txService)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Bill posting processor configured",
		"interval", cfg.PostingInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Setup periodic processing ticker
	ticker := time.NewTicker(cfg.PostingInterval)
	defer ticker.Stop()

	// Run initial processing on startup
	logger.Info("Running initial bill posting check...")
	if count, err := processor.ProcessDueBills(ctx, time.Now()); err != nil {
		logger.Error("Initial posting run failed", "error", err)
	} else {
		logger.Info("Initial posting run complete", "transactions_posted", count)
	}

	// Start periodic processing
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Posting due bills...")
				count, err := processor.ProcessDueBills(ctx, now)
				if err != nil {
					logger.Error("Periodic posting run failed", "error", err)
				} else {
					logger.Info("Periodic posting run complete",
						"transactions_posted", count,
						"next_check", now.Add(cfg.PostingInterval).Format("15:04:05"))
				}
			}
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	// Graceful shutdown
	logger.Info("Shutting down posting-worker...")
	cancel()

	// Give the in-flight run time to finish
	time.Sleep(2 * time.Second)
	logger.Info("Posting-worker shutdown complete")
}
