package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/platform/postgres"
	"github.com/taskhub/taskhub-api/internal/platform/redisdenylist"
	"github.com/taskhub/taskhub-api/internal/platform/redisindex"
	"github.com/taskhub/taskhub-api/internal/search"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/service/auth"
	"github.com/taskhub/taskhub-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Search
	index     search.Index
	projector *search.Projector

	// Service interfaces
	jwtService       auth.JWTService
	denylist         auth.TokenDenylist
	passwordVerifier auth.PasswordVerifier
	taskService      service.TaskService
}

// newApplication creates a new application instance with all dependencies
// initialized: database with applied migrations, redis-backed search index,
// stores, and services.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.db = db

	if err := runMigrations(db, logger); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.redis, err = setupRedis(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app.denylist = redisdenylist.NewRedisDenylist(app.redis, logger)

	app.jwtService, err = auth.NewJWTService(cfg.Auth, app.denylist)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	app.index = redisindex.NewRedisIndex(app.redis, logger)
	app.projector = search.NewProjector(app.index, logger)

	app.taskService = service.NewTaskService(app.taskStore, app.projector, app.index, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupRedis connects to the search index backend and verifies the
// connection.
func setupRedis(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Search.RedisAddr,
		Password: cfg.Search.RedisPassword,
		DB:       cfg.Search.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connection established", "addr", cfg.Search.RedisAddr)
	return client, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
