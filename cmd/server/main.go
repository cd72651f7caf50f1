package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/divvykit/divvy/internal/api"
	"github.com/divvykit/divvy/internal/auth"
	"github.com/divvykit/divvy/internal/config"
	"github.com/divvykit/divvy/internal/metrics"
	"github.com/divvykit/divvy/internal/service"
	"github.com/divvykit/divvy/internal/storage"
	"github.com/divvykit/divvy/internal/storage/postgres"
	"github.com/divvykit/divvy/internal/storage/sqlite"
	"github.com/divvykit/divvy/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()
	if *configPath == "" {
		*configPath = os.Getenv("DIVVY_CONFIG")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)

	codec := auth.NewCodec(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	app := api.New(api.Deps{
		Projects:        service.NewProjectService(store, codec, tokens),
		Members:         service.NewMemberService(store),
		Bills:           service.NewBillService(store),
		Ledger:          service.NewLedgerService(store),
		Tokens:          tokens,
		Store:           store,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window(),
	})

	if cfg.Metrics.Enabled {
		go func() {
			slog.Info("Metrics server starting", "port", cfg.Metrics.Port)
			if err := metrics.ListenAndServe(cfg.Metrics.Port); err != nil {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	go func() {
		slog.Info("Server starting", "address", cfg.Server.Addr())
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return sqlite.New(cfg.Database.Path)
	case "postgres":
		return postgres.New(context.Background(), cfg.Database.DSN, int32(cfg.Database.MaxConns), cfg.Database.HealthCheckPeriod())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
