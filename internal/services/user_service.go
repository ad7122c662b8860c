package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"taskmaster/internal/cache"
	"taskmaster/internal/events"
	"taskmaster/internal/models"
	"taskmaster/internal/repositories"
	"taskmaster/internal/validation"

	"go.uber.org/zap"
)

// userService implements UserService.
type userService struct {
	userRepo repositories.UserRepository
	cache    cache.Cache
	events   events.EventBus
	logger   *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repositories.UserRepository,
	cache cache.Cache,
	events events.EventBus,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo: userRepo,
		cache:    cache,
		events:   events,
		logger:   logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// Create registers a participant with a zero balance and no badge.
func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid create user request", err)
	}

	if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, EntityAlreadyExistsError("user", "email", req.Email)
	}

	user := &models.User{
		Name:  req.Name,
		Email: req.Email,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The pre-check above races with concurrent creates; the unique
		// index is the authority.
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, EntityAlreadyExistsError("user", "email", req.Email)
		}
		s.logger.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, NewInternalError("failed to create user")
	}

	if err := s.events.PublishAsync(ctx, events.NewUserCreatedEvent(user.ID, user.Email, user.Name)); err != nil {
		s.logger.Warn("Failed to publish user created event", zap.Error(err), zap.Int64("user_id", user.ID))
	}

	s.invalidateRanking(ctx)
	return user, nil
}

// GetByID retrieves a user, going through the cache.
func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if cached, found := s.cache.Get(ctx, cache.KeyUser(id)); found {
		if user, ok := cached.(*models.User); ok {
			return user, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get user", zap.Error(err), zap.Int64("user_id", id))
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", id)
	}

	if err := s.cache.Set(ctx, cache.KeyUser(id), user, 0); err != nil {
		s.logger.Debug("Failed to cache user", zap.Error(err), zap.Int64("user_id", id))
	}
	return user, nil
}

// GetByAPIKey resolves a user from an API key. Used by the auth middleware.
func (s *userService) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if apiKey == "" {
		return nil, NewUnauthorizedError("missing API key")
	}

	user, err := s.userRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		s.logger.Error("Failed to look up API key", zap.Error(err))
		return nil, NewInternalError("failed to look up API key")
	}
	if user == nil {
		return nil, NewUnauthorizedError("invalid API key")
	}
	return user, nil
}

// List returns a page of users plus the total count.
func (s *userService) List(ctx context.Context, params models.PaginationParams) ([]*models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, 0, NewInternalError("failed to list users")
	}
	return users, total, nil
}

// Update changes a user's name and email.
func (s *userService) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid update user request", err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", id)
	}

	if req.Email != user.Email {
		if existing, _ := s.userRepo.GetByEmail(ctx, req.Email); existing != nil {
			return nil, EntityAlreadyExistsError("user", "email", req.Email)
		}
	}

	var changes []string
	if req.Name != user.Name {
		changes = append(changes, "name")
	}
	if req.Email != user.Email {
		changes = append(changes, "email")
	}

	user.Name = req.Name
	user.Email = req.Email

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, EntityAlreadyExistsError("user", "email", req.Email)
		}
		s.logger.Error("Failed to update user", zap.Error(err), zap.Int64("user_id", id))
		return nil, NewInternalError("failed to update user")
	}

	if len(changes) > 0 {
		if err := s.events.PublishAsync(ctx, events.NewUserUpdatedEvent(id, changes)); err != nil {
			s.logger.Warn("Failed to publish user updated event", zap.Error(err))
		}
	}

	s.cache.Delete(ctx, cache.KeyUser(id))
	s.invalidateRanking(ctx)
	return user, nil
}

// Delete removes a user. Ledger entries and quests cascade in the database.
func (s *userService) Delete(ctx context.Context, id int64) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return NewInternalError("failed to get user")
	}
	if user == nil {
		return EntityNotFoundError("user", id)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", zap.Error(err), zap.Int64("user_id", id))
		return NewInternalError("failed to delete user")
	}

	if err := s.events.PublishAsync(ctx, events.NewUserDeletedEvent(id, user.Email)); err != nil {
		s.logger.Warn("Failed to publish user deleted event", zap.Error(err))
	}

	s.cache.Delete(ctx, cache.KeyUser(id))
	s.cache.DeletePattern(ctx, cache.KeyUserHistory(id))
	s.invalidateRanking(ctx)
	return nil
}

// ===============================
// API KEYS
// ===============================

// IssueAPIKey generates and stores a fresh API key, replacing any previous
// one. The plain key is returned exactly once.
func (s *userService) IssueAPIKey(ctx context.Context, id int64) (*APIKeyResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to get user")
	}
	if user == nil {
		return nil, EntityNotFoundError("user", id)
	}

	key, err := generateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate API key", zap.Error(err))
		return nil, NewInternalError("failed to generate API key")
	}

	if err := s.userRepo.SetAPIKey(ctx, id, &key); err != nil {
		s.logger.Error("Failed to store API key", zap.Error(err), zap.Int64("user_id", id))
		return nil, NewInternalError("failed to store API key")
	}

	s.cache.Delete(ctx, cache.KeyUser(id))
	s.logger.Info("API key issued", zap.Int64("user_id", id))

	return &APIKeyResponse{UserID: id, APIKey: key}, nil
}

// RevokeAPIKey clears a user's API key.
func (s *userService) RevokeAPIKey(ctx context.Context, id int64) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return NewInternalError("failed to get user")
	}
	if user == nil {
		return EntityNotFoundError("user", id)
	}

	if err := s.userRepo.SetAPIKey(ctx, id, nil); err != nil {
		return NewInternalError("failed to revoke API key")
	}

	s.cache.Delete(ctx, cache.KeyUser(id))
	s.logger.Info("API key revoked", zap.Int64("user_id", id))
	return nil
}

// UpsertByEmail returns the user with the given email, creating one when
// absent. Called by the auth gateway after an OAuth exchange.
func (s *userService) UpsertByEmail(ctx context.Context, email, name string) (*models.User, error) {
	user, err := s.userRepo.UpsertByEmail(ctx, email, name)
	if err != nil {
		s.logger.Error("Failed to upsert user", zap.Error(err), zap.String("email", email))
		return nil, NewInternalError("failed to upsert user")
	}
	return user, nil
}

func (s *userService) invalidateRanking(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.KeyRanking); err != nil {
		s.logger.Debug("Failed to invalidate ranking cache", zap.Error(err))
	}
}

// generateAPIKey returns 32 random bytes hex-encoded.
func generateAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
