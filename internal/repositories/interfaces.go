package repositories

import (
	"context"

	"taskmaster/internal/models"
)

// UserRepository manages user rows and the ranking view.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	List(ctx context.Context, params models.PaginationParams) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
	SetAPIKey(ctx context.Context, id int64, apiKey *string) error
	UpsertByEmail(ctx context.Context, email, name string) (*models.User, error)
	ListRanked(ctx context.Context) ([]*models.RankedUser, error)
}

// PointRepository manages the append-only points ledger.
type PointRepository interface {
	Grant(ctx context.Context, userID int64, delta int, message *string) (int, error)
	Deduct(ctx context.Context, userID int64, delta int, message *string) (int, error)
	HistoryPage(ctx context.Context, userID int64, params models.PaginationParams) ([]*models.PointEntry, int64, error)
}

// BadgeRepository manages the badge catalog and per-user assignments.
type BadgeRepository interface {
	Create(ctx context.Context, badge *models.Badge) error
	GetByID(ctx context.Context, id int64) (*models.Badge, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Badge, error)
	ListAssignmentTargets(ctx context.Context) ([]*models.User, error)
	UpdateCurrentBadge(ctx context.Context, userID int64, badgeID *int64) error
}

// QuestRepository manages quests and their one-shot completion.
type QuestRepository interface {
	Create(ctx context.Context, quest *models.Quest) error
	GetByID(ctx context.Context, id int64) (*models.Quest, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error)
	Complete(ctx context.Context, questID int64) (*models.Quest, int, error)
}

// TagRepository stores NFC tag arrivals.
type TagRepository interface {
	Insert(ctx context.Context, tag *models.NFCTag) (bool, error)
	GetByTagID(ctx context.Context, tagID string) (*models.NFCTag, error)
	List(ctx context.Context) ([]*models.NFCTag, error)
}

// TokenRepository stores Expo push tokens for the notification relay.
type TokenRepository interface {
	Register(ctx context.Context, token string) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, token string) error
}
