package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Berytech/Investment-Platform/internal/config"
	"github.com/Berytech/Investment-Platform/internal/database"
	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/worker"
	"go.uber.org/zap"
)

// Standalone drift auditor. Runs the same reconciliation pass the API embeds,
// for deployments that prefer the audit outside the serving process.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	if err := logger.Init(&logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name + "-reconcile",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting reconcile worker...")

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	})
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	pool := db.Pool()
	w := worker.NewReconcileWorker(
		repository.NewPostgresEventRepository(pool),
		repository.NewPostgresInvestorRepository(pool),
		repository.NewPostgresInvestmentRepository(pool),
		&worker.ReconcileWorkerConfig{ScanInterval: cfg.Ledger.ReconcileInterval},
	)
	if err := w.Start(ctx); err != nil {
		appLog.Fatal("Failed to start reconcile worker", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down reconcile worker...")
	w.Stop()
}
