package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Berytech/Investment-Platform/internal/config"
	"github.com/Berytech/Investment-Platform/internal/database"
	"github.com/Berytech/Investment-Platform/internal/di"
	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/logger"
	"github.com/Berytech/Investment-Platform/internal/middleware"
	"github.com/Berytech/Investment-Platform/internal/service"
	"github.com/Berytech/Investment-Platform/internal/telemetry"
	"github.com/Berytech/Investment-Platform/internal/worker"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.App.Debug {
		logLevel = "debug"
	}
	logCfg := &logger.Config{
		Level:       logLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Investment Platform API...")

	ctx := context.Background()

	// Initialize tracing
	if cfg.OTel.Enabled {
		if err := telemetry.Init(ctx, &telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			CollectorAddr:  cfg.OTel.CollectorAddr,
		}); err != nil {
			appLog.Warn("Tracing init failed, continuing without traces", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = telemetry.Shutdown(shutdownCtx)
			}()
		}
	}

	// Initialize database connection
	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.Int32("min_conns", cfg.Database.MinConns),
		zap.Int32("max_conns", cfg.Database.MaxConns))

	// Initialize Redis; the summary cache degrades to pass-through without it
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLog.Warn("Redis unreachable, summaries will not be cached", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
			eventPublisher = nil
		} else {
			appLog.Info("Kafka event publisher connected")
		}
	}
	if eventPublisher == nil {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	defer eventPublisher.Close()

	cascadePolicy := domain.CascadePreserveInvestments
	if cfg.Ledger.CascadePolicy == "delete" {
		cascadePolicy = domain.CascadeDeleteInvestments
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		ServiceName:    cfg.App.Name,
		SummaryTTL:     cfg.Redis.SummaryTTL,
		CascadePolicy:  cascadePolicy,
		LedgerConfig: &service.LedgerServiceConfig{
			MaxRetries:    cfg.Ledger.MaxRetries,
			RetryInterval: cfg.Ledger.RetryInterval,
		},
	})

	// Start the drift audit worker alongside the API
	reconciler := worker.NewReconcileWorker(
		container.EventRepo,
		container.InvestorRepo,
		container.InvestmentRepo,
		&worker.ReconcileWorkerConfig{ScanInterval: cfg.Ledger.ReconcileInterval},
	)
	if err := reconciler.Start(ctx); err != nil {
		appLog.Warn("Reconcile worker failed to start", zap.Error(err))
	}
	defer reconciler.Stop()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Admin.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Worker stats for operators
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":    stats.TotalConns(),
				"acquired_conns": stats.AcquiredConns(),
				"idle_conns":     stats.IdleConns(),
				"max_conns":      stats.MaxConns(),
			},
			"reconciler": reconciler.Stats(),
		})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.POST("", container.EventHandler.Create)
			events.GET("", container.EventHandler.List)
			events.GET("/:eventId", container.EventHandler.Get)
		}

		investors := v1.Group("/investors")
		{
			investors.POST("", container.InvestorHandler.Create)
			investors.GET("/:investorId", container.InvestorHandler.GetView)
			investors.GET("/event/:eventId", container.InvestorHandler.ListByEvent)
		}

		startups := v1.Group("/startups")
		{
			startups.POST("", container.StartupHandler.Create)
			startups.GET("/:startupId", container.StartupHandler.Get)
			startups.GET("/event/:eventId", container.StartupHandler.ListByEvent)
		}

		investments := v1.Group("/investments")
		{
			investments.POST("", container.InvestmentHandler.Invest)
			investments.GET("/:investmentId/history", container.InvestmentHandler.GetHistory)
			investments.GET("/investor/:investorId", container.InvestmentHandler.ListInvestorInvestments)
			investments.GET("/summary/:eventId", container.InvestmentHandler.GetEventSummary)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminKey(cfg.Admin.Key))
		{
			admin.POST("/events", container.EventHandler.Create)
			admin.PUT("/events/:eventId", container.EventHandler.Update)
			admin.DELETE("/events/:eventId", container.EventHandler.Delete)

			admin.POST("/investors", container.InvestorHandler.CreateWithBudget)
			admin.PUT("/investors/:investorId", container.InvestorHandler.Update)
			admin.DELETE("/investors/:investorId", container.InvestorHandler.Delete)

			admin.POST("/startups", container.StartupHandler.Create)
			admin.PUT("/startups/:startupId", container.StartupHandler.Update)
			admin.DELETE("/startups/:startupId", container.StartupHandler.Delete)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Investment Platform API listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
