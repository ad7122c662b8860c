// ===============================
// FILE: cmd/nfc-consumer/main.go
// ===============================

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/ingest"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting taskmaster NFC consumer")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := database.InitDB(&cfg.Database, logger); err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	dbManager := database.GetManager()
	defer dbManager.Close()

	serviceCollection, err := services.NewServiceCollection(cfg, dbManager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	conn, err := ingest.Connect(ctx, &cfg.Broker, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to broker", zap.Error(err))
	}

	consumer := ingest.NewConsumer(conn, cfg.Broker.Subject, cfg.Broker.QueueGroup, serviceCollection.Ingest, logger)
	if err := consumer.Start(); err != nil {
		logger.Fatal("Failed to start consumer", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	if err := consumer.Stop(); err != nil {
		logger.Warn("Failed to unsubscribe", zap.Error(err))
	}
	ingest.Drain(conn, cfg.Server.GracefulTimeout, logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer shutdownCancel()
	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}
}

func initLogger() (*zap.Logger, error) {
	var config zap.Config
	if os.Getenv("GO_ENV") == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
