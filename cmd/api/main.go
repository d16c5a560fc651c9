package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/smart-accounting/backend/config"
	"github.com/smart-accounting/backend/internal/infra/db"
	"github.com/smart-accounting/backend/internal/infra/dependency"
	"github.com/smart-accounting/backend/internal/infra/redis"
	"github.com/smart-accounting/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if present (development convenience)
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	cfg := config.Load()

	setupLogger(cfg.Server.Environment)

	slog.Info("Starting smart accounting API",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
	)

	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&model.PointsAccountModel{},
		&model.LedgerEntryModel{},
		&model.CheckinModel{},
		&model.TransactionModel{},
	); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	injector := dependency.NewInjector(cfg, database, redisClient)

	if cfg.Points.GiftSweepEnabled {
		if err := injector.Scheduler.Start(cfg.Points.GiftSweepSchedule); err != nil {
			slog.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer injector.Scheduler.Stop()
	}

	engine := injector.Router.Setup(cfg.Server.Environment)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogger configures the global structured logger.
func setupLogger(environment string) {
	var handler slog.Handler
	if environment == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
	slog.SetDefault(slog.New(handler))
}
