/*
Package main is the entry point for the Pairchat server.

It is responsible for loading configuration, initializing the global logging system,
connecting to Postgres and running migrations, wiring the durable stores and
services together with the presence registry, and gracefully handling operating
system interrupt signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairchat/internal/app/ai"
	"pairchat/internal/app/db"
	"pairchat/internal/app/message"
	"pairchat/internal/app/notify"
	"pairchat/internal/app/presence"
	"pairchat/internal/app/relation"
	"pairchat/internal/app/storage"
	"pairchat/internal/app/user"
	"pairchat/internal/configs"
	"pairchat/internal/handler"
	"pairchat/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to Postgres and apply pending migrations.
	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	storageService, err := storage.NewService(storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		logx.Fatal(err, "Failed to initialize storage service")
	}

	// Presence layer: registry tracks live connections, router fans events out.
	registry := presence.NewRegistry()
	router := presence.NewRouter(registry)

	users := user.NewStore(pool)
	notifications := notify.NewStore(pool)
	messages := message.NewService(message.NewPGStore(pool), users, router)
	relations := relation.NewService(users, notifications, router)

	deps := &handler.AppDeps{
		Config:         cfg,
		Users:          users,
		Messages:       messages,
		Relations:      relations,
		Notifications:  notifications,
		Registry:       registry,
		StorageService: storageService,
		AI: ai.NewProvider(ai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}),
	}

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler.Router(deps),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Pairchat Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	registry.Shutdown()

	logx.Info("Server gracefully stopped.")
}
