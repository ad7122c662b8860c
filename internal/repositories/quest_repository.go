package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// Quest completion sentinels, distinguished by the service layer.
var (
	ErrQuestMissing   = fmt.Errorf("quest not found")
	ErrQuestCompleted = fmt.Errorf("quest already completed")
)

// questRepository implements QuestRepository on Postgres.
type questRepository struct {
	*BaseRepository
}

// NewQuestRepository creates a new quest repository.
func NewQuestRepository(db *database.Manager, logger *zap.Logger) QuestRepository {
	return &questRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a quest for a user.
func (r *questRepository) Create(ctx context.Context, quest *models.Quest) error {
	query := `
		INSERT INTO quests (title, description, points, completed, user_id)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id, completed`

	err := r.QueryRowContext(ctx, query,
		quest.Title, quest.Description, quest.Points, quest.UserID,
	).Scan(&quest.ID, &quest.Completed)
	if err != nil {
		return fmt.Errorf("failed to create quest: %w", err)
	}

	r.GetLogger().Info("Quest created",
		zap.Int64("quest_id", quest.ID),
		zap.Int64("user_id", quest.UserID),
		zap.Int("points", quest.Points),
	)
	return nil
}

// GetByID retrieves a quest. Returns (nil, nil) when absent.
func (r *questRepository) GetByID(ctx context.Context, id int64) (*models.Quest, error) {
	query := `SELECT id, title, description, points, completed, user_id FROM quests WHERE id = $1`

	var quest models.Quest
	err := r.QueryRowContext(ctx, query, id).Scan(
		&quest.ID, &quest.Title, &quest.Description, &quest.Points, &quest.Completed, &quest.UserID,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quest: %w", err)
	}
	return &quest, nil
}

// ListByUser returns a user's quests, oldest first.
func (r *questRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error) {
	query := `
		SELECT id, title, description, points, completed, user_id
		FROM quests
		WHERE user_id = $1
		ORDER BY id ASC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	var quests []*models.Quest
	for rows.Next() {
		var quest models.Quest
		if err := rows.Scan(&quest.ID, &quest.Title, &quest.Description, &quest.Points, &quest.Completed, &quest.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, &quest)
	}
	return quests, rows.Err()
}

// Complete flips the completed flag and grants the quest's points in one
// transaction. The quest row is locked first so two concurrent completions
// serialize; the loser sees completed=true and awards nothing.
func (r *questRepository) Complete(ctx context.Context, questID int64) (*models.Quest, int, error) {
	var quest models.Quest
	var newTotal int

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			SELECT id, title, description, points, completed, user_id
			FROM quests WHERE id = $1 FOR UPDATE`, questID,
		).Scan(&quest.ID, &quest.Title, &quest.Description, &quest.Points, &quest.Completed, &quest.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrQuestMissing
			}
			return fmt.Errorf("failed to lock quest: %w", err)
		}

		if quest.Completed {
			return ErrQuestCompleted
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE quests SET completed = TRUE WHERE id = $1`, quest.ID,
		); err != nil {
			return fmt.Errorf("failed to mark quest completed: %w", err)
		}

		message := fmt.Sprintf("Completed quest: %s", quest.Title)
		total, err := applyDeltaTx(ctx, tx, quest.UserID, quest.Points, &message)
		if err != nil {
			return err
		}

		quest.Completed = true
		newTotal = total
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	r.GetLogger().Info("Quest completed",
		zap.Int64("quest_id", quest.ID),
		zap.Int64("user_id", quest.UserID),
		zap.Int("points", quest.Points),
		zap.Int("new_total", newTotal),
	)
	return &quest, newTotal, nil
}
