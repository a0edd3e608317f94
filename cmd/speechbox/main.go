package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/speechbox-go/internal/api"
	"github.com/dgnsrekt/speechbox-go/internal/config"
	"github.com/dgnsrekt/speechbox-go/internal/history"
	"github.com/dgnsrekt/speechbox-go/internal/logging"
	"github.com/dgnsrekt/speechbox-go/internal/speech"
	"github.com/dgnsrekt/speechbox-go/internal/tts"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		// Use stderr before logger is initialized
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting speechbox", "version", "0.1.0")

	// Warn if bearer token auth is disabled
	if cfg.AuthDisabled() {
		logger.Warn("HTTP bearer authentication is disabled (BEARER_TOKEN is empty)")
	}

	// Log loaded configuration (without sensitive values)
	logger.Info("configuration loaded",
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"http_port", cfg.HTTPPort,
		"environment", cfg.Environment,
		"storage_mode", cfg.StorageMode,
		"max_text_length", cfg.MaxTextLength,
		"azure_region", cfg.AzureSpeechRegion,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	// Connect to PostgreSQL and migrate
	db, err := history.Open(cfg.DatabaseDSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	store := history.NewStore(db, logger)
	if err := store.SeedDefaultVoices(ctx); err != nil {
		logger.Warn("failed to seed voice catalog", "error", err)
	}

	// Initialize the TTS engine registry. The fallback engine is always
	// present; Azure becomes the default when credentials are configured.
	ttsRegistry := tts.NewRegistry()
	if err := ttsRegistry.Register(tts.NewFallbackEngine(tts.FallbackConfig{}, logger)); err != nil {
		logger.Error("failed to register fallback engine", "error", err)
		os.Exit(1)
	}

	if cfg.SynthesisEnabled() {
		azureEngine, err := tts.NewAzureEngine(tts.AzureConfig{
			Key:          cfg.AzureSpeechKey,
			Region:       cfg.AzureSpeechRegion,
			DefaultVoice: cfg.DefaultVoice,
			Timeout:      cfg.SynthesisTimeout,
		}, logger)
		if err != nil {
			logger.Warn("failed to initialize Azure TTS", "error", err)
		} else if err := ttsRegistry.Register(azureEngine); err != nil {
			logger.Warn("failed to register Azure TTS", "error", err)
		} else if err := ttsRegistry.SetDefault("azure"); err != nil {
			logger.Warn("failed to set Azure as default engine", "error", err)
		} else {
			logger.Info("Azure TTS engine registered", "region", cfg.AzureSpeechRegion)
		}
	} else {
		logger.Warn("no Azure speech key configured, all audio will use the fallback generator")
	}

	// Synthesis orchestrator
	generator := speech.NewService(ttsRegistry, store, logger)

	// Create and start HTTP server
	server := api.New(cfg, logger, store, generator)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
}
