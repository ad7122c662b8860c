package repositories

import (
	"context"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// ErrEmailTaken reports an email collision on insert.
var ErrEmailTaken = fmt.Errorf("email already taken")

// userRepository implements UserRepository on Postgres.
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.name, u.email, u.total_points, u.api_key,
	u.current_badge_id, u.created_at, b.name`

const userFrom = `
	FROM users u
	LEFT JOIN badges b ON u.current_badge_id = b.id`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.TotalPoints, &user.APIKey,
		&user.CurrentBadgeID, &user.CreatedAt, &user.CurrentBadgeName,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a new user with a zero points balance.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, total_points, api_key)
		VALUES ($1, $2, 0, $3)
		RETURNING id, total_points, created_at`

	err := r.QueryRowContext(ctx, query, user.Name, user.Email, user.APIKey).
		Scan(&user.ID, &user.TotalPoints, &user.CreatedAt)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrEmailTaken)
		}
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)
	return nil
}

// GetByID retrieves a user by ID. Returns (nil, nil) when absent.
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.id = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when absent.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.email = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, email))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByAPIKey retrieves a user by API key. Returns (nil, nil) when absent.
func (r *userRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	query := `SELECT ` + userColumns + userFrom + ` WHERE u.api_key = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, apiKey))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by API key: %w", err)
	}
	return user, nil
}

// List returns a page of users ordered by ID, plus the total count.
func (r *userRepository) List(ctx context.Context, params models.PaginationParams) ([]*models.User, int64, error) {
	params = r.NormalizePagination(params)

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + userFrom + `
		ORDER BY u.id ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.QueryContext(ctx, query, params.Limit, params.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

// Update persists name and email changes.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $1, email = $2 WHERE id = $3`

	result, err := r.ExecContext(ctx, query, user.Name, user.Email, user.ID)
	if err != nil {
		if r.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, ErrEmailTaken)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %d not found", user.ID)
	}
	return nil
}

// Delete removes a user. Ledger entries and quests cascade.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	r.GetLogger().Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// SetAPIKey stores (or clears, with nil) a user's API key.
func (r *userRepository) SetAPIKey(ctx context.Context, id int64, apiKey *string) error {
	result, err := r.ExecContext(ctx, `UPDATE users SET api_key = $1 WHERE id = $2`, apiKey, id)
	if err != nil {
		return fmt.Errorf("failed to set API key: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// UpsertByEmail returns the user with the given email, creating one when it
// does not exist. Used by the auth gateway after a successful OAuth exchange.
func (r *userRepository) UpsertByEmail(ctx context.Context, email, name string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, total_points)
		VALUES ($1, $2, 0)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, email, total_points, api_key, current_badge_id, created_at`

	var user models.User
	err := r.QueryRowContext(ctx, query, name, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.TotalPoints,
		&user.APIKey, &user.CurrentBadgeID, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user by email: %w", err)
	}
	return &user, nil
}

// ===============================
// RANKING VIEW
// ===============================

// ListRanked returns all users ordered by total points descending. Ties keep
// insertion order so repeated calls produce a stable listing.
func (r *userRepository) ListRanked(ctx context.Context) ([]*models.RankedUser, error) {
	query := `
		SELECT u.id, u.name, u.email, u.total_points, b.name
		FROM users u
		LEFT JOIN badges b ON u.current_badge_id = b.id
		ORDER BY u.total_points DESC, u.id ASC`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranked users: %w", err)
	}
	defer rows.Close()

	var ranked []*models.RankedUser
	rank := 1
	for rows.Next() {
		var entry models.RankedUser
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.Email, &entry.TotalPoints, &entry.Badge); err != nil {
			return nil, fmt.Errorf("failed to scan ranked user: %w", err)
		}
		entry.Rank = rank
		rank++
		ranked = append(ranked, &entry)
	}
	return ranked, rows.Err()
}
