package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/caseboard/visit-scheduler/internal/config"
	"github.com/caseboard/visit-scheduler/internal/database"
	"github.com/caseboard/visit-scheduler/internal/repository"
	"github.com/caseboard/visit-scheduler/internal/server"
	"github.com/caseboard/visit-scheduler/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	db, err := database.Open(cfg.DatabasePath, cfg.BusyTimeout)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	store := repository.NewStore(db, database.RetryPolicy{
		Attempts: cfg.WriteRetryAttempts,
		Delay:    cfg.WriteRetryDelay,
	})

	ctx := context.Background()
	authService, err := services.NewAuthService(ctx, cfg, store.Users, store.APITokens)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	srv := server.New(store, cfg, authService)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
