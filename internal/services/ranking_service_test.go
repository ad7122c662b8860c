package services

import (
	"context"
	"testing"

	"taskmaster/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRankReturnsRepositoryOrder(t *testing.T) {
	users := newMockUserRepo()
	users.ranked = []*models.RankedUser{
		{Rank: 1, UserID: 3, Name: "Ada", TotalPoints: 90},
		{Rank: 2, UserID: 1, Name: "Grace", TotalPoints: 40},
		{Rank: 3, UserID: 2, Name: "Alan", TotalPoints: 40},
	}
	svc := NewRankingService(users, newTestCache(), zap.NewNop())

	ranked, err := svc.Rank(context.Background())
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "Ada", ranked[0].Name)
	// Equal totals keep ascending-id order from the repository.
	assert.Equal(t, int64(1), ranked[1].UserID)
	assert.Equal(t, int64(2), ranked[2].UserID)
}

func TestRankCachesResult(t *testing.T) {
	users := newMockUserRepo()
	users.ranked = []*models.RankedUser{{Rank: 1, UserID: 1, Name: "Ada", TotalPoints: 10}}
	svc := NewRankingService(users, newTestCache(), zap.NewNop())

	first, err := svc.Rank(context.Background())
	require.NoError(t, err)

	// Mutating the repository result does not affect the cached ranking.
	users.ranked = nil
	second, err := svc.Rank(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRankEmptyIsNotNil(t *testing.T) {
	svc := NewRankingService(newMockUserRepo(), newTestCache(), zap.NewNop())

	ranked, err := svc.Rank(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}
