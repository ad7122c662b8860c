package services

import (
	"context"

	"taskmaster/internal/events"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
	"taskmaster/internal/validation"

	"go.uber.org/zap"
)

// ingestService implements IngestService.
type ingestService struct {
	tagRepo repositories.TagRepository
	events  events.EventBus
	logger  *zap.Logger
}

// NewIngestService creates a new NFC ingest service.
func NewIngestService(
	tagRepo repositories.TagRepository,
	events events.EventBus,
	logger *zap.Logger,
) IngestService {
	return &ingestService{
		tagRepo: tagRepo,
		events:  events,
		logger:  logger,
	}
}

// StoreTag persists one tag read. The second return value reports whether
// the tag was new; duplicates are dropped silently so replays from the broker
// have no effect.
func (s *ingestService) StoreTag(ctx context.Context, msg *TagMessage) (*models.NFCTag, bool, error) {
	if err := validation.ValidateStruct(msg); err != nil {
		return nil, false, NewValidationError("invalid tag message", err)
	}

	tag := &models.NFCTag{
		TagID:     msg.TagID,
		UserName:  msg.UserName,
		UserEmail: msg.UserEmail,
	}

	inserted, err := s.tagRepo.Insert(ctx, tag)
	if err != nil {
		s.logger.Error("Failed to store tag", zap.Error(err), zap.String("tag_id", msg.TagID))
		return nil, false, NewInternalError("failed to store tag")
	}

	if !inserted {
		s.logger.Debug("Duplicate tag dropped", zap.String("tag_id", msg.TagID))
		return tag, false, nil
	}

	if err := s.events.PublishAsync(ctx, events.NewTagArrivedEvent(tag.TagID, tag.UserName, tag.UserEmail)); err != nil {
		s.logger.Warn("Failed to publish tag arrived event", zap.Error(err))
	}
	return tag, true, nil
}

// ListTags returns all stored tag arrivals, newest first.
func (s *ingestService) ListTags(ctx context.Context) ([]*models.NFCTag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list tags", zap.Error(err))
		return nil, NewInternalError("failed to list tags")
	}
	if tags == nil {
		tags = []*models.NFCTag{}
	}
	return tags, nil
}
