package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeroten/pindex/internal/logger"
	"github.com/zeroten/pindex/pkg/api"
	"github.com/zeroten/pindex/pkg/config"
	"github.com/zeroten/pindex/pkg/gc"
	"github.com/zeroten/pindex/pkg/metadata"
	"github.com/zeroten/pindex/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: $XDG_CONFIG_HOME/pindex/config.yaml)")
	writeConfig := flag.String("write-config", "", "Write a starter config file to the given path and exit")
	logLevel := flag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	if *writeConfig != "" {
		if err := config.WriteDefault(*writeConfig); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote starter config to %s\n", *writeConfig)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("pindex - metadata layer for content-addressed storage")
	logger.Info("Log level set to: %s", cfg.Logging.Level)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}
	apiMetrics := metrics.NewAPIMetrics()

	collections, err := config.CreateCollections(&cfg.Store)
	if err != nil {
		logger.Fatal("Failed to create record store: %v", err)
	}
	defer func() {
		if err := collections.Close(); err != nil {
			logger.Error("Record store close error: %v", err)
		}
	}()

	gateway, err := config.CreatePinGateway(ctx, &cfg.Gateway)
	if err != nil {
		logger.Fatal("Failed to create pin gateway: %v", err)
	}

	store := metadata.NewStore(metadata.StoreConfig{
		Files:   collections.Files,
		Folders: collections.Folders,
		Shares:  collections.Shares,
		Unpins:  collections.Unpins,
		Policy:  metadata.NewAccessPolicy(cfg.Admins),
		Gateway: gateway,
	})
	logger.Info("Metadata store initialized: store=%s gateway=%s admins=%d",
		cfg.Store.Type, cfg.Gateway.Type, len(cfg.Admins))

	collector := gc.NewCollector(store, gc.Config{
		Enabled:     cfg.GC.Enabled,
		Interval:    cfg.GC.Interval,
		MaxAttempts: cfg.GC.MaxAttempts,
		DryRun:      cfg.GC.DryRun,
	})
	collector.Start()

	server := api.NewServer(api.Config{
		Store:     store,
		Gateway:   gateway,
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Metrics:   apiMetrics,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	serverDone := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running on %s. Press Ctrl+C to stop.", addr)

	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error: %v", err)
		}
		if err := collector.Stop(shutdownCtx); err != nil {
			logger.Error("Collector shutdown error: %v", err)
		}
		if err := <-serverDone; err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped gracefully")

	case err := <-serverDone:
		if err != nil {
			logger.Error("Server error: %v", err)
			os.Exit(1)
		}
		logger.Info("Server stopped")
	}
}
