// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opd-ai/go-starstrike/pkg/api"
	"github.com/opd-ai/go-starstrike/pkg/config"
	"github.com/opd-ai/go-starstrike/pkg/health"
	"github.com/opd-ai/go-starstrike/pkg/logging"
	"github.com/opd-ai/go-starstrike/pkg/resource"
	"github.com/opd-ai/go-starstrike/pkg/store"
	"github.com/opd-ai/go-starstrike/pkg/validation"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	// Load configuration; environment overrides apply either way
	path := *configPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", path,
		)
		path = ""
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		logger.Error(ctx, "Failed to load configuration", err,
			"config_path", *configPath,
		)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	logger = logging.NewLoggerWithWriter(os.Stdout, logging.ParseLevel(cfg.Log.Level))
	gin.SetMode(gin.ReleaseMode)

	st, err := store.Open(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error(ctx, "Failed to open store", err,
			"driver", cfg.Storage.Driver,
		)
		os.Exit(1)
	}

	limiter := validation.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	tasks := resource.NewManager(resource.Limits{MaxMemoryMB: cfg.Server.MaxMemoryMB}, logger)

	// Setup health checks
	healthChecker := health.NewHealthChecker()
	healthChecker.AddCheck(health.NewStoreHealthCheck(st))
	healthChecker.AddCheck(health.NewBreakerHealthCheck(st.Breaker().State))
	healthChecker.AddCheck(health.NewMemoryHealthCheck(cfg.Server.MaxMemoryMB, nil))
	healthChecker.AddCheck(resource.NewHealthCheck(tasks))

	router, err := api.NewRouter(api.Options{
		Store:       st,
		Health:      healthChecker,
		Limiter:     limiter,
		Logger:      logger,
		TicketLives: cfg.Game.TicketLives,
	})
	if err != nil {
		logger.Error(ctx, "Failed to build router", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info(ctx, "Starting server",
			"address", cfg.Server.Address,
			"driver", cfg.Storage.Driver,
			"rate_limit", cfg.Server.RateLimit,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server failed", err, "address", cfg.Server.Address)
			os.Exit(1)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown failed", err)
	}
	if err := tasks.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Background tasks did not finish", err)
	}
	limiter.Close()
	if err := st.Close(); err != nil {
		logger.Error(ctx, "Store close failed", err)
	}
}
