// ===============================
// FILE: cmd/authgw/main.go
// ===============================

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"taskmaster/internal/authgw"
	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger.Info("Starting taskmaster auth gateway")

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

	responseBuilder := response.NewBuilder(response.DefaultConfig(), logger)
	gateway := authgw.NewGateway(&cfg.Auth, serviceCollection.User, logger, responseBuilder)

	mux := http.NewServeMux()
	gateway.Routes(mux)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting auth gateway", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
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
