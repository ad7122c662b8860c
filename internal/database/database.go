package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"taskmaster/internal/config"

	"go.uber.org/zap"
)

var manager *Manager

// InitDB initializes the global database manager and runs migrations.
func InitDB(cfg *config.DatabaseConfig, logger *zap.Logger) error {
	m, err := NewManager(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database manager: %w", err)
	}

	migrationsPath, err := resolveMigrationsPath(cfg.MigrationsPath)
	if err != nil {
		m.Close()
		return err
	}

	if err := m.Migrate(migrationsPath); err != nil {
		m.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	manager = m
	return nil
}

// GetManager returns the global database manager.
func GetManager() *Manager {
	return manager
}

// Health reports the health of the global manager.
func Health(ctx context.Context) *HealthStatus {
	if manager == nil {
		return &HealthStatus{
			Status: StatusUnhealthy,
			Errors: []string{"database not initialized"},
		}
	}
	return manager.Health(ctx)
}

// CloseDB closes the global manager.
func CloseDB() error {
	if manager == nil {
		return nil
	}
	err := manager.Close()
	manager = nil
	return err
}

// resolveMigrationsPath accepts either an absolute path or a path relative to
// the working directory, so both local runs and container deployments work.
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = "migrations"
	}
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to determine working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("migrations directory not found at %s: %w", path, err)
	}
	return path, nil
}
