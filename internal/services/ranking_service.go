package services

import (
	"context"
	"time"

	"taskmaster/internal/cache"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"

	"go.uber.org/zap"
)

// rankingTTL bounds staleness of the cached ranking between invalidations.
const rankingTTL = 30 * time.Second

// rankingService implements RankingService.
type rankingService struct {
	userRepo repositories.UserRepository
	cache    cache.Cache
	logger   *zap.Logger
}

// NewRankingService creates a new ranking service.
func NewRankingService(
	userRepo repositories.UserRepository,
	cache cache.Cache,
	logger *zap.Logger,
) RankingService {
	return &rankingService{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Rank returns every user ordered by total points descending with 1-based
// positions. Ties share the order they were registered in, so the listing is
// stable across calls.
func (s *rankingService) Rank(ctx context.Context) ([]*models.RankedUser, error) {
	if cached, found := s.cache.Get(ctx, cache.KeyRanking); found {
		if ranked, ok := cached.([]*models.RankedUser); ok {
			return ranked, nil
		}
	}

	ranked, err := s.userRepo.ListRanked(ctx)
	if err != nil {
		s.logger.Error("Failed to build ranking", zap.Error(err))
		return nil, NewInternalError("failed to build ranking")
	}
	if ranked == nil {
		ranked = []*models.RankedUser{}
	}

	if err := s.cache.Set(ctx, cache.KeyRanking, ranked, rankingTTL); err != nil {
		s.logger.Debug("Failed to cache ranking", zap.Error(err))
	}
	return ranked, nil
}
