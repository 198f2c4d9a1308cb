package container

import (
	"context"
	"fmt"
	"log"

	"goportfolio/adapters/excel"
	"goportfolio/adapters/memory"
	"goportfolio/adapters/postgres"
	"goportfolio/app"
	"goportfolio/internal"
	"goportfolio/internal/api"
	"goportfolio/internal/config"
	"goportfolio/internal/geometry"
	"goportfolio/ports"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	PortfolioRepo ports.PortfolioRepository

	// Services
	PortfolioService *app.PortfolioService

	// HTTP
	SSEHub  *api.SSEHub
	Handler *api.PortfolioHandler
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	return c, nil
}

// InitWithDatabase wires the PostgreSQL repository
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.PortfolioRepo = postgres.NewPortfolioRepository(db)
	return c.initServices()
}

// InitInMemory wires the in-memory repository
func (c *Container) InitInMemory() error {
	c.PortfolioRepo = memory.NewPortfolioRepository()
	log.Printf("No DATABASE_URL configured, portfolios are kept in memory")
	return c.initServices()
}

// GeometryConfig converts the environment settings to enumeration limits
func GeometryConfig(cfg config.GeometryConfig) geometry.Config {
	return geometry.Config{
		MaxDimensions:     cfg.MaxDimensions,
		Tolerance:         cfg.Tolerance,
		SingularTolerance: cfg.SingularTolerance,
		MaxSubsets:        cfg.MaxSubsets,
		Timeout:           cfg.Timeout,
		Workers:           cfg.Workers,
	}
}

func (c *Container) initServices() error {
	c.PortfolioService = app.NewPortfolioService(c.PortfolioRepo, app.ServiceConfig{
		Epsilon:      c.Config.Translator.Epsilon,
		Geometry:     GeometryConfig(c.Config.Geometry),
		DetectCycles: c.Config.Validator.DetectCycles,
	}, c.Logger)

	c.SSEHub = api.NewSSEHub()
	c.PortfolioService.SetEventPublisher(c.SSEHub)
	c.Handler = api.NewPortfolioHandler(c.PortfolioService, excel.DefaultWorkbookConfig())

	log.Printf("Container initialized successfully")
	return nil
}

// Router builds the HTTP router for the configured services
func (c *Container) Router() (*gin.Engine, error) {
	if c.Handler == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	if c.Config.Server.GinMode != "" {
		gin.SetMode(c.Config.Server.GinMode)
	}
	return api.NewRouter(c.Handler, c.SSEHub, api.RouterConfig{Metrics: c.Config.Metrics.Enabled}), nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}

	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
