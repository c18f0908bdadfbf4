package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/ambucheck/api"
	"github.com/garnizeh/ambucheck/internal/bootstrap"
	"github.com/garnizeh/ambucheck/internal/config"
	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/internal/rules"
	"github.com/garnizeh/ambucheck/internal/uploads"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the built-in JWT secret; set JWT_SECRET before deploying")
	}

	logger.Info("starting AmbuCheck server", slog.String("version", version), slog.String("build_time", buildTime))

	ctx := context.Background()

	store, backend, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", slog.String("backend", string(backend)), slog.Any("err", err))
		os.Exit(1)
	}
	if err := bootstrap.Seed(ctx, store, cfg.AdminDefaultPassword, logger); err != nil {
		logger.Error("failed to seed storage", slog.Any("err", err))
		os.Exit(1)
	}

	registry, err := forms.Builtin()
	if err != nil {
		logger.Error("failed to load form catalogue", slog.Any("err", err))
		os.Exit(1)
	}

	mirrors, err := uploads.MirrorsFromConfig(cfg.Storage)
	if err != nil {
		logger.Error("failed to configure upload storage", slog.Any("err", err))
		os.Exit(1)
	}
	uploadStore := uploads.NewStore(cfg.UploadsDir, logger, mirrors...)
	if !uploadStore.Persistent() && !cfg.IsDevelopment() {
		logger.Warn("uploads are kept on local disk only; configure Supabase or S3 storage")
	}

	handler := api.SetupRoutes(cfg, version, buildTime, api.Deps{
		Store:    store,
		Registry: registry,
		Rules:    rules.DefaultTable(),
		Uploads:  uploadStore,
		Images:   uploads.NewFetcher(cfg.UploadsDir, nil),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr), slog.String("backend", string(backend)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}

	if err := store.Close(); err != nil {
		logger.Error("error closing storage", slog.Any("err", err))
	}

	logger.Info("server exited")
}
