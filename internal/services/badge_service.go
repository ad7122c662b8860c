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
	"golang.org/x/exp/slices"
)

// badgeService implements BadgeService.
type badgeService struct {
	badgeRepo repositories.BadgeRepository
	cache     cache.Cache
	events    events.EventBus
	logger    *zap.Logger
}

// NewBadgeService creates a new badge service.
func NewBadgeService(
	badgeRepo repositories.BadgeRepository,
	cache cache.Cache,
	events events.EventBus,
	logger *zap.Logger,
) BadgeService {
	return &badgeService{
		badgeRepo: badgeRepo,
		cache:     cache,
		events:    events,
		logger:    logger,
	}
}

// ===============================
// CATALOG OPERATIONS
// ===============================

// Add inserts a badge into the catalog. Existing assignments are untouched
// until the next sweep.
func (s *badgeService) Add(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create badge request", err)
	}

	badge := &models.Badge{
		Name:        req.Name,
		Description: req.Description,
		Threshold:   req.Threshold,
		ImageRef:    req.ImageRef,
	}

	if err := s.badgeRepo.Create(ctx, badge); err != nil {
		if errors.Is(err, repositories.ErrBadgeNameTaken) {
			return nil, EntityAlreadyExistsError("badge", "name", req.Name)
		}
		s.logger.Error("Failed to create badge", zap.Error(err), zap.String("name", req.Name))
		return nil, NewInternalError("failed to create badge")
	}

	s.cache.Delete(ctx, cache.KeyBadges)
	return badge, nil
}

// Remove deletes a badge. Holders lose it immediately via the foreign key;
// their next sweep picks a replacement.
func (s *badgeService) Remove(ctx context.Context, id int64) error {
	badge, err := s.badgeRepo.GetByID(ctx, id)
	if err != nil {
		return NewInternalError("failed to get badge")
	}
	if badge == nil {
		return EntityNotFoundError("badge", id)
	}

	if err := s.badgeRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete badge", zap.Error(err), zap.Int64("badge_id", id))
		return NewInternalError("failed to delete badge")
	}

	s.cache.Delete(ctx, cache.KeyBadges)
	s.cache.Delete(ctx, cache.KeyRanking)
	return nil
}

// List returns the catalog, highest threshold first.
func (s *badgeService) List(ctx context.Context) ([]*models.Badge, error) {
	badges, err := s.badgeRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list badges", zap.Error(err))
		return nil, NewInternalError("failed to list badges")
	}
	return badges, nil
}

// ===============================
// ASSIGNMENT SWEEP
// ===============================

// AssignAll recomputes every user's badge: the highest-threshold badge whose
// threshold the user's balance meets, or none. Only users whose badge
// actually changed are written and reported. An empty catalog or an empty
// user set fails with not found before anything is written.
func (s *badgeService) AssignAll(ctx context.Context) (*AssignAllResult, error) {
	badges, err := s.badgeRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to load badge catalog", zap.Error(err))
		return nil, NewInternalError("failed to load badge catalog")
	}
	if len(badges) == 0 {
		return nil, NewNotFoundError("no badges in catalog")
	}

	// Highest threshold wins; equal thresholds resolve to the older badge.
	slices.SortStableFunc(badges, func(a, b *models.Badge) int {
		if a.Threshold != b.Threshold {
			return b.Threshold - a.Threshold
		}
		return int(a.ID - b.ID)
	})

	users, err := s.badgeRepo.ListAssignmentTargets(ctx)
	if err != nil {
		s.logger.Error("Failed to load assignment targets", zap.Error(err))
		return nil, NewInternalError("failed to load users")
	}
	if len(users) == 0 {
		return nil, NewNotFoundError("no users found")
	}

	result := &AssignAllResult{Checked: len(users), Changes: []*models.BadgeChange{}}

	for _, user := range users {
		target := pickBadge(badges, user.TotalPoints)

		if badgeIDEqual(user.CurrentBadgeID, target) {
			continue
		}

		var targetID *int64
		if target != nil {
			targetID = &target.ID
		}

		if err := s.badgeRepo.UpdateCurrentBadge(ctx, user.ID, targetID); err != nil {
			s.logger.Error("Failed to update badge",
				zap.Error(err),
				zap.Int64("user_id", user.ID),
			)
			return nil, NewInternalError("failed to update badge")
		}

		change := &models.BadgeChange{UserID: user.ID, Name: user.Name}
		if target != nil {
			change.NewBadge = target.Name
			s.events.PublishAsync(ctx, events.NewBadgeAssignedEvent(user.ID, target.Name))
		} else {
			change.Cleared = true
			s.events.PublishAsync(ctx, events.NewBadgeClearedEvent(user.ID))
		}
		result.Changes = append(result.Changes, change)
	}

	s.cache.Delete(ctx, cache.KeyRanking)

	s.logger.Info("Badge assignment sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("changed", len(result.Changes)),
	)
	return result, nil
}

// pickBadge returns the first badge (highest threshold) the balance meets,
// or nil when none qualifies. Badges must be sorted threshold descending.
func pickBadge(badges []*models.Badge, totalPoints int) *models.Badge {
	for _, badge := range badges {
		if totalPoints >= badge.Threshold {
			return badge
		}
	}
	return nil
}

func badgeIDEqual(current *int64, target *models.Badge) bool {
	if current == nil && target == nil {
		return true
	}
	if current == nil || target == nil {
		return false
	}
	return *current == target.ID
}
