package repositories

import (
	"context"
	"fmt"

	"taskmaster/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection.
type Collection struct {
	User  UserRepository
	Point PointRepository
	Badge BadgeRepository
	Quest QuestRepository
	Tag   TagRepository
	Token TokenRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a repository collection over one database manager.
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.User = NewUserRepository(db, logger)
	collection.Point = NewPointRepository(db, logger)
	collection.Badge = NewBadgeRepository(db, logger)
	collection.Quest = NewQuestRepository(db, logger)
	collection.Tag = NewTagRepository(db, logger)
	collection.Token = NewTokenRepository(db, logger)

	logger.Info("Repository collection initialized")

	return collection, nil
}

// HealthCheck reports database connectivity and query metrics.
func (c *Collection) HealthCheck(ctx context.Context) map[string]interface{} {
	health := make(map[string]interface{})

	dbHealth := c.db.Health(ctx)
	health["database"] = map[string]interface{}{
		"status":  dbHealth.Status,
		"latency": dbHealth.Latency,
		"errors":  dbHealth.Errors,
	}

	metrics := c.db.Metrics()
	health["performance"] = map[string]interface{}{
		"query_count":      metrics.QueryCount,
		"error_count":      metrics.ErrorCount,
		"slow_query_count": metrics.SlowQueryCount,
		"avg_query_time":   metrics.AvgQueryTime,
	}

	return health
}

// GetDB returns the underlying manager.
func (c *Collection) GetDB() *database.Manager {
	return c.db
}
