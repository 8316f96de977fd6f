// Package main implements the entry point for the TaskHub API server,
// a per-user task management service with filtering and full-text search.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/taskhub/taskhub-api/internal/config"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
)

func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	return cfg, appLogger, nil
}
