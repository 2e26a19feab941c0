package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/survey/internal/config"
	"github.com/JonMunkholm/survey/internal/core"
	"github.com/JonMunkholm/survey/internal/database"
	"github.com/JonMunkholm/survey/internal/logging"
	"github.com/JonMunkholm/survey/internal/session"
	"github.com/JonMunkholm/survey/internal/web"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.DSN()); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("database schema up to date")
	}

	pool := database.MustConnect(ctx, cfg.Database)
	defer pool.Close()

	store := database.New(pool)
	defer store.Close()
	service := core.NewService(store, core.WithBcryptCost(cfg.Security.BcryptCost))

	sessionStore, sweeper := openSessionStore(ctx, cfg.Session)
	if sweeper != nil {
		defer sweeper.Stop()
	}
	sessions := session.NewManager(sessionStore, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure)

	server := web.NewServer(cfg, service, store, sessions)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openSessionStore uses Redis when configured and falls back to process
// memory, which needs a periodic sweep of expired sessions.
func openSessionStore(ctx context.Context, cfg config.SessionConfig) (session.Store, *cron.Cron) {
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.Info("sessions stored in redis")
		return rs, nil
	}

	ms := session.NewMemoryStore(cfg.TTL)
	c, err := session.StartSweeper(cfg.SweepSchedule, ms)
	if err != nil {
		slog.Error("failed to schedule session sweep", "error", err)
		os.Exit(1)
	}
	slog.Info("sessions stored in memory", "sweep", cfg.SweepSchedule)
	return ms, c
}
