package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"go.uber.org/zap"
)

// ErrUserMissing is returned when a ledger operation targets an unknown user.
var ErrUserMissing = fmt.Errorf("user not found")

// pointRepository implements PointRepository on Postgres.
type pointRepository struct {
	*BaseRepository
}

// NewPointRepository creates a new point ledger repository.
func NewPointRepository(db *database.Manager, logger *zap.Logger) PointRepository {
	return &pointRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// LEDGER MUTATIONS
// ===============================

// Grant adds delta points to a user and appends a ledger entry. The ledger
// row and the cached total move in the same transaction.
func (r *pointRepository) Grant(ctx context.Context, userID int64, delta int, message *string) (int, error) {
	return r.apply(ctx, userID, delta, message)
}

// Deduct removes delta points from a user. The cached total clamps at zero
// while the ledger keeps the full requested amount, so the history records
// what was asked for even when the balance could not cover it.
func (r *pointRepository) Deduct(ctx context.Context, userID int64, delta int, message *string) (int, error) {
	return r.apply(ctx, userID, -delta, message)
}

func (r *pointRepository) apply(ctx context.Context, userID int64, delta int, message *string) (int, error) {
	var newTotal int

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		total, err := applyDeltaTx(ctx, tx, userID, delta, message)
		if err != nil {
			return err
		}
		newTotal = total
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.GetLogger().Info("Ledger entry appended",
		zap.Int64("user_id", userID),
		zap.Int("delta", delta),
		zap.Int("new_total", newTotal),
	)
	return newTotal, nil
}

// applyDeltaTx locks the user row, updates the clamped total and appends the
// raw delta to the ledger. Shared with quest completion so the flag flip and
// the grant commit together.
func applyDeltaTx(ctx context.Context, tx *sql.Tx, userID int64, delta int, message *string) (int, error) {
	var total int
	err := tx.QueryRowContext(ctx,
		`SELECT total_points FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrUserMissing
		}
		return 0, fmt.Errorf("failed to lock user row: %w", err)
	}

	newTotal := total + delta
	if newTotal < 0 {
		newTotal = 0
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET total_points = $1 WHERE id = $2`, newTotal, userID,
	); err != nil {
		return 0, fmt.Errorf("failed to update total: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO points (user_id, delta, message) VALUES ($1, $2, $3)`,
		userID, delta, message,
	); err != nil {
		return 0, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return newTotal, nil
}

// ===============================
// HISTORY
// ===============================

// HistoryPage returns one window of a user's ledger, newest first, plus the
// total entry count.
func (r *pointRepository) HistoryPage(ctx context.Context, userID int64, params models.PaginationParams) ([]*models.PointEntry, int64, error) {
	params = r.NormalizePagination(params)

	total, err := r.GetTotalCount(ctx,
		`SELECT COUNT(*) FROM points WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	query := `
		SELECT id, user_id, delta, message, created_at
		FROM points
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, userID, params.Limit, params.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ledger history: %w", err)
	}
	defer rows.Close()

	var entries []*models.PointEntry
	for rows.Next() {
		var entry models.PointEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Delta, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, total, rows.Err()
}
