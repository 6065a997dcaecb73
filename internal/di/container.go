package di

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Berytech/Investment-Platform/internal/cache"
	"github.com/Berytech/Investment-Platform/internal/database"
	"github.com/Berytech/Investment-Platform/internal/domain"
	"github.com/Berytech/Investment-Platform/internal/handler"
	"github.com/Berytech/Investment-Platform/internal/repository"
	"github.com/Berytech/Investment-Platform/internal/service"
)

// Container holds all dependencies for the API server
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo      repository.EventRepository
	InvestorRepo   repository.InvestorRepository
	StartupRepo    repository.StartupRepository
	InvestmentRepo repository.InvestmentRepository
	LedgerRepo     repository.LedgerRepository

	// Cache and publishers
	SummaryCache   *cache.SummaryCache
	EventPublisher service.EventPublisher

	// Services
	LedgerService   service.LedgerService
	SummaryService  service.SummaryService
	EventService    service.EventService
	InvestorService service.InvestorService
	StartupService  service.StartupService

	// Handlers
	HealthHandler     *handler.HealthHandler
	EventHandler      *handler.EventHandler
	InvestorHandler   *handler.InvestorHandler
	StartupHandler    *handler.StartupHandler
	InvestmentHandler *handler.InvestmentHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	ServiceName    string
	SummaryTTL     time.Duration
	CascadePolicy  domain.CascadePolicy
	LedgerConfig   *service.LedgerServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	pool := cfg.DB.Pool()
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.InvestorRepo = repository.NewPostgresInvestorRepository(pool)
	c.StartupRepo = repository.NewPostgresStartupRepository(pool)
	c.InvestmentRepo = repository.NewPostgresInvestmentRepository(pool)
	c.LedgerRepo = repository.NewPostgresLedgerRepository(pool)

	c.SummaryCache = cache.NewSummaryCache(cfg.Redis, cfg.SummaryTTL)

	c.LedgerService = service.NewLedgerService(
		c.InvestorRepo,
		c.StartupRepo,
		c.InvestmentRepo,
		c.LedgerRepo,
		c.EventPublisher,
		c.SummaryCache,
		cfg.LedgerConfig,
	)
	c.SummaryService = service.NewSummaryService(
		c.EventRepo,
		c.InvestorRepo,
		c.StartupRepo,
		c.InvestmentRepo,
		c.SummaryCache,
	)
	c.EventService = service.NewEventService(
		c.EventRepo,
		c.InvestorRepo,
		c.StartupRepo,
		&service.EventServiceConfig{CascadePolicy: cfg.CascadePolicy},
	)
	c.InvestorService = service.NewInvestorService(
		c.EventRepo,
		c.InvestorRepo,
		c.StartupRepo,
		c.InvestmentRepo,
	)
	c.StartupService = service.NewStartupService(c.EventRepo, c.StartupRepo)

	c.HealthHandler = handler.NewHealthHandler(c.DB, cfg.ServiceName)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.InvestorHandler = handler.NewInvestorHandler(c.InvestorService)
	c.StartupHandler = handler.NewStartupHandler(c.StartupService)
	c.InvestmentHandler = handler.NewInvestmentHandler(c.LedgerService, c.SummaryService)

	return c
}
