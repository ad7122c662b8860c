package services

import (
	"context"
	"errors"

	"taskmaster/internal/cache"
	"taskmaster/internal/events"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
	"taskmaster/internal/validation"

	"go.uber.org/zap"
)

// ledgerService implements LedgerService.
type ledgerService struct {
	pointRepo repositories.PointRepository
	userRepo  repositories.UserRepository
	cache     cache.Cache
	events    events.EventBus
	logger    *zap.Logger
}

// NewLedgerService creates a new points ledger service.
func NewLedgerService(
	pointRepo repositories.PointRepository,
	userRepo repositories.UserRepository,
	cache cache.Cache,
	events events.EventBus,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		pointRepo: pointRepo,
		userRepo:  userRepo,
		cache:     cache,
		events:    events,
		logger:    logger,
	}
}

// Grant adds points to a user's balance and appends a ledger entry.
func (s *ledgerService) Grant(ctx context.Context, userID int64, req *PointsRequest) (*PointsResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid grant request", err)
	}

	newTotal, err := s.pointRepo.Grant(ctx, userID, req.Amount, req.Message)
	if err != nil {
		if errors.Is(err, repositories.ErrUserMissing) {
			return nil, EntityNotFoundError("user", userID)
		}
		s.logger.Error("Failed to grant points", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("failed to grant points")
	}

	msg := ""
	if req.Message != nil {
		msg = *req.Message
	}
	if err := s.events.PublishAsync(ctx, events.NewPointsGrantedEvent(userID, int64(req.Amount), int64(newTotal), msg)); err != nil {
		s.logger.Warn("Failed to publish points granted event", zap.Error(err))
	}

	s.invalidate(ctx, userID)
	return &PointsResult{UserID: userID, TotalPoints: newTotal}, nil
}

// Deduct removes points from a user's balance. The balance clamps at zero
// while the ledger records the full requested amount, so history and balance
// deliberately diverge on an overdraw.
func (s *ledgerService) Deduct(ctx context.Context, userID int64, req *PointsRequest) (*PointsResult, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid deduct request", err)
	}

	newTotal, err := s.pointRepo.Deduct(ctx, userID, req.Amount, req.Message)
	if err != nil {
		if errors.Is(err, repositories.ErrUserMissing) {
			return nil, EntityNotFoundError("user", userID)
		}
		s.logger.Error("Failed to deduct points", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("failed to deduct points")
	}

	msg := ""
	if req.Message != nil {
		msg = *req.Message
	}
	if err := s.events.PublishAsync(ctx, events.NewPointsDeductedEvent(userID, int64(-req.Amount), int64(newTotal), msg)); err != nil {
		s.logger.Warn("Failed to publish points deducted event", zap.Error(err))
	}

	s.invalidate(ctx, userID)
	return &PointsResult{UserID: userID, TotalPoints: newTotal}, nil
}

// History returns one window of a user's ledger, newest first, together with
// the user's identity and current balance.
func (s *ledgerService) History(ctx context.Context, userID int64, params models.PaginationParams) (*models.PointHistory, error) {
	if err := validation.ValidateStruct(&params); err != nil {
		return nil, NewValidationError("invalid pagination parameters", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	entries, total, err := s.pointRepo.HistoryPage(ctx, userID, params)
	if err != nil {
		s.logger.Error("Failed to fetch ledger history", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("failed to fetch history")
	}

	remaining := total - int64(params.Skip) - int64(len(entries))
	if remaining < 0 {
		remaining = 0
	}

	return &models.PointHistory{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		TotalPoints: user.TotalPoints,
		Entries:     entries,
		TotalCount:  total,
		Pagination: models.HistoryMeta{
			Skip:      params.Skip,
			Limit:     params.Limit,
			Remaining: remaining,
		},
	}, nil
}

func (s *ledgerService) invalidate(ctx context.Context, userID int64) {
	s.cache.Delete(ctx, cache.KeyUser(userID))
	s.cache.DeletePattern(ctx, cache.KeyUserHistory(userID))
	s.cache.Delete(ctx, cache.KeyRanking)
}
