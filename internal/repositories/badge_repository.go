package repositories

import (
	"context"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// ErrBadgeNameTaken reports a catalog name collision on insert.
var ErrBadgeNameTaken = fmt.Errorf("badge name already taken")

// badgeRepository implements BadgeRepository on Postgres.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a badge into the catalog.
func (r *badgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	query := `
		INSERT INTO badges (name, description, threshold, image_ref)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.QueryRowContext(ctx, query,
		badge.Name, badge.Description, badge.Threshold, badge.ImageRef,
	).Scan(&badge.ID)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("badge %q: %w", badge.Name, ErrBadgeNameTaken)
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}

	r.GetLogger().Info("Badge created",
		zap.Int64("badge_id", badge.ID),
		zap.String("name", badge.Name),
		zap.Int("threshold", badge.Threshold),
	)
	return nil
}

// GetByID retrieves a badge. Returns (nil, nil) when absent.
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	query := `SELECT id, name, description, threshold, image_ref FROM badges WHERE id = $1`

	var badge models.Badge
	err := r.QueryRowContext(ctx, query, id).Scan(
		&badge.ID, &badge.Name, &badge.Description, &badge.Threshold, &badge.ImageRef,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}
	return &badge, nil
}

// Delete removes a badge. users.current_badge_id references are nulled by
// the foreign key, so holders lose the badge without a separate sweep.
func (r *badgeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM badges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete badge: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("badge %d not found", id)
	}

	r.GetLogger().Info("Badge deleted", zap.Int64("badge_id", id))
	return nil
}

// List returns the catalog ordered by threshold descending, ties by id, which
// is the order the assignment pass consumes.
func (r *badgeRepository) List(ctx context.Context) ([]*models.Badge, error) {
	query := `
		SELECT id, name, description, threshold, image_ref
		FROM badges
		ORDER BY threshold DESC, id ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		var badge models.Badge
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Threshold, &badge.ImageRef); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &badge)
	}
	return badges, rows.Err()
}

// ListAssignmentTargets returns every user with just the fields the
// assignment pass needs.
func (r *badgeRepository) ListAssignmentTargets(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, name, email, total_points, current_badge_id FROM users ORDER BY id ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment targets: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.TotalPoints, &user.CurrentBadgeID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment target: %w", err)
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// UpdateCurrentBadge writes (or clears, with nil) a user's current badge.
func (r *badgeRepository) UpdateCurrentBadge(ctx context.Context, userID int64, badgeID *int64) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET current_badge_id = $1 WHERE id = $2`, badgeID, userID)
	if err != nil {
		return fmt.Errorf("failed to update current badge: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
