package services

import (
	"context"
	"fmt"
	"time"

	"taskmaster/internal/cache"
	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/events"
	"taskmaster/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared infrastructure.
type ServiceCollection struct {
	User    UserService
	Ledger  LedgerService
	Badge   BadgeService
	Quest   QuestService
	Ranking RankingService
	Ingest  IngestService

	Repositories *repositories.Collection
	Cache        cache.Cache
	EventBus     events.EventBus
	Logger       *zap.Logger
	Config       *config.Config
	DBManager    *database.Manager

	startTime time.Time
}

// NewServiceCollection wires repositories, cache and the event bus into the
// full service set.
func NewServiceCollection(
	cfg *config.Config,
	db *database.Manager,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	repos, err := repositories.NewCollection(db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	appCache, err := cache.NewCache(&cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.TTL,
		MaxKeys:         cfg.Cache.MaxKeys,
		CleanupInterval: cfg.Cache.CleanupInterval,
		RedisURL:        cfg.Cache.RedisURL,
		PoolSize:        cfg.Cache.PoolSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	bus := events.NewEventBus(events.DefaultEventBusConfig(), logger)
	if err := bus.Start(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}

	sc := &ServiceCollection{
		Repositories: repos,
		Cache:        appCache,
		EventBus:     bus,
		Logger:       logger,
		Config:       cfg,
		DBManager:    db,
		startTime:    time.Now(),
	}

	sc.User = NewUserService(repos.User, appCache, bus, logger)
	sc.Ledger = NewLedgerService(repos.Point, repos.User, appCache, bus, logger)
	sc.Badge = NewBadgeService(repos.Badge, appCache, bus, logger)
	sc.Quest = NewQuestService(repos.Quest, repos.User, appCache, bus, logger)
	sc.Ranking = NewRankingService(repos.User, appCache, logger)
	sc.Ingest = NewIngestService(repos.Tag, bus, logger)

	logger.Info("Service collection initialized")
	return sc, nil
}

// Health reports the health of shared infrastructure.
func (sc *ServiceCollection) Health(ctx context.Context) map[string]interface{} {
	health := sc.Repositories.HealthCheck(ctx)

	if err := sc.Cache.Health(ctx); err != nil {
		health["cache"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	} else {
		health["cache"] = map[string]interface{}{"status": "healthy"}
	}

	if err := sc.EventBus.Health(); err != nil {
		health["events"] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
	} else {
		health["events"] = map[string]interface{}{"status": "healthy"}
	}

	health["uptime"] = time.Since(sc.startTime).String()
	return health
}

// Shutdown stops the event bus and closes the cache.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	if err := sc.EventBus.Stop(ctx); err != nil {
		sc.Logger.Warn("Event bus shutdown error", zap.Error(err))
	}
	if err := sc.Cache.Close(); err != nil {
		sc.Logger.Warn("Cache shutdown error", zap.Error(err))
	}
	return nil
}
