package repositories

import (
	"context"
	"fmt"

	"taskmaster/internal/database"

	"go.uber.org/zap"
)

// tokenRepository implements TokenRepository on Postgres.
type tokenRepository struct {
	*BaseRepository
}

// NewTokenRepository creates a new push token repository.
func NewTokenRepository(db *database.Manager, logger *zap.Logger) TokenRepository {
	return &tokenRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Register stores a push token. Re-registering an existing token is a no-op.
func (r *tokenRepository) Register(ctx context.Context, token string) error {
	query := `INSERT INTO expo_tokens (token) VALUES ($1) ON CONFLICT (token) DO NOTHING`

	if _, err := r.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to register token: %w", err)
	}

	r.GetLogger().Debug("Push token registered", zap.String("token", token))
	return nil
}

// List returns all registered push tokens.
func (r *tokenRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.QueryContext(ctx, `SELECT token FROM expo_tokens ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// Delete removes a push token, typically after Expo reports it dead.
func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.ExecContext(ctx, `DELETE FROM expo_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
