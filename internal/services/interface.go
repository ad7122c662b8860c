package services

import (
	"context"

	"taskmaster/internal/models"
)

// UserService manages participants and their API keys.
type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	List(ctx context.Context, params models.PaginationParams) ([]*models.User, int64, error)
	Update(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	IssueAPIKey(ctx context.Context, id int64) (*APIKeyResponse, error)
	RevokeAPIKey(ctx context.Context, id int64) error
	UpsertByEmail(ctx context.Context, email, name string) (*models.User, error)
}

// LedgerService manages the append-only points ledger.
type LedgerService interface {
	Grant(ctx context.Context, userID int64, req *PointsRequest) (*PointsResult, error)
	Deduct(ctx context.Context, userID int64, req *PointsRequest) (*PointsResult, error)
	History(ctx context.Context, userID int64, params models.PaginationParams) (*models.PointHistory, error)
}

// BadgeService manages the badge catalog and the assignment sweep.
type BadgeService interface {
	Add(ctx context.Context, req *CreateBadgeRequest) (*models.Badge, error)
	Remove(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Badge, error)
	AssignAll(ctx context.Context) (*AssignAllResult, error)
}

// QuestService manages quests and their one-shot completion.
type QuestService interface {
	Create(ctx context.Context, req *CreateQuestRequest) (*models.Quest, error)
	Complete(ctx context.Context, questID int64) (*CompleteQuestResult, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error)
}

// RankingService serves the ranking view.
type RankingService interface {
	Rank(ctx context.Context) ([]*models.RankedUser, error)
}

// IngestService stores deduplicated NFC tag arrivals.
type IngestService interface {
	StoreTag(ctx context.Context, msg *TagMessage) (*models.NFCTag, bool, error)
	ListTags(ctx context.Context) ([]*models.NFCTag, error)
}
