package repositories

import (
	"context"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// tagRepository implements TagRepository on Postgres.
type tagRepository struct {
	*BaseRepository
}

// NewTagRepository creates a new NFC tag repository.
func NewTagRepository(db *database.Manager, logger *zap.Logger) TagRepository {
	return &tagRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Insert stores a tag arrival. Returns false when the tag was already seen;
// the unique index on tag_id is the dedup mechanism, so concurrent consumers
// cannot double-store.
func (r *tagRepository) Insert(ctx context.Context, tag *models.NFCTag) (bool, error) {
	query := `
		INSERT INTO nfc_tags (tag_id, user_name, user_email)
		VALUES ($1, $2, $3)
		ON CONFLICT (tag_id) DO NOTHING
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query, tag.TagID, tag.UserName, tag.UserEmail).
		Scan(&tag.ID, &tag.CreatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			// Conflict path: RETURNING yields no row
			return false, nil
		}
		return false, fmt.Errorf("failed to insert tag: %w", err)
	}

	r.GetLogger().Info("Tag stored",
		zap.String("tag_id", tag.TagID),
		zap.String("user_email", tag.UserEmail),
	)
	return true, nil
}

// GetByTagID retrieves a tag arrival. Returns (nil, nil) when absent.
func (r *tagRepository) GetByTagID(ctx context.Context, tagID string) (*models.NFCTag, error) {
	query := `SELECT id, tag_id, user_name, user_email, created_at FROM nfc_tags WHERE tag_id = $1`

	var tag models.NFCTag
	err := r.QueryRowContext(ctx, query, tagID).Scan(
		&tag.ID, &tag.TagID, &tag.UserName, &tag.UserEmail, &tag.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// List returns all stored tags, newest first.
func (r *tagRepository) List(ctx context.Context) ([]*models.NFCTag, error) {
	query := `SELECT id, tag_id, user_name, user_email, created_at FROM nfc_tags ORDER BY created_at DESC, id DESC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.NFCTag
	for rows.Next() {
		var tag models.NFCTag
		if err := rows.Scan(&tag.ID, &tag.TagID, &tag.UserName, &tag.UserEmail, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}
