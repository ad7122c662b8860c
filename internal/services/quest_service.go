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

// questService implements QuestService.
type questService struct {
	questRepo repositories.QuestRepository
	userRepo  repositories.UserRepository
	cache     cache.Cache
	events    events.EventBus
	logger    *zap.Logger
}

// NewQuestService creates a new quest service.
func NewQuestService(
	questRepo repositories.QuestRepository,
	userRepo repositories.UserRepository,
	cache cache.Cache,
	events events.EventBus,
	logger *zap.Logger,
) QuestService {
	return &questService{
		questRepo: questRepo,
		userRepo:  userRepo,
		cache:     cache,
		events:    events,
		logger:    logger,
	}
}

// Create adds an open quest for a user.
func (s *questService) Create(ctx context.Context, req *CreateQuestRequest) (*models.Quest, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create quest request", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", req.UserID)
	}

	quest := &models.Quest{
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		UserID:      req.UserID,
	}

	if err := s.questRepo.Create(ctx, quest); err != nil {
		s.logger.Error("Failed to create quest", zap.Error(err), zap.Int64("user_id", req.UserID))
		return nil, NewInternalError("failed to create quest")
	}

	if err := s.events.PublishAsync(ctx, events.NewQuestCreatedEvent(quest.ID, quest.UserID, int64(quest.Points), quest.Title)); err != nil {
		s.logger.Warn("Failed to publish quest created event", zap.Error(err))
	}
	return quest, nil
}

// Complete finishes a quest exactly once. The completed flag and the point
// grant commit in one transaction; a repeat call reports the conflict and
// awards nothing.
func (s *questService) Complete(ctx context.Context, questID int64) (*CompleteQuestResult, error) {
	quest, newTotal, err := s.questRepo.Complete(ctx, questID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrQuestMissing):
			return nil, EntityNotFoundError("quest", questID)
		case errors.Is(err, repositories.ErrQuestCompleted):
			return nil, NewBusinessError("quest already completed", "QUEST_ALREADY_COMPLETED")
		default:
			s.logger.Error("Failed to complete quest", zap.Error(err), zap.Int64("quest_id", questID))
			return nil, NewInternalError("failed to complete quest")
		}
	}

	if err := s.events.PublishAsync(ctx, events.NewQuestCompletedEvent(
		quest.ID, quest.UserID, int64(quest.Points), int64(newTotal), quest.Title,
	)); err != nil {
		s.logger.Warn("Failed to publish quest completed event", zap.Error(err))
	}

	s.cache.Delete(ctx, cache.KeyUser(quest.UserID))
	s.cache.DeletePattern(ctx, cache.KeyUserHistory(quest.UserID))
	s.cache.Delete(ctx, cache.KeyRanking)

	return &CompleteQuestResult{Quest: quest, TotalPoints: newTotal}, nil
}

// ListByUser returns a user's quests, oldest first.
func (s *questService) ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", userID)
	}

	quests, err := s.questRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list quests", zap.Error(err), zap.Int64("user_id", userID))
		return nil, NewInternalError("failed to list quests")
	}
	if quests == nil {
		quests = []*models.Quest{}
	}
	return quests, nil
}
