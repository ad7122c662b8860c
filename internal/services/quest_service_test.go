package services

import (
	"context"
	"testing"

	"taskmaster/internal/models"
	"taskmaster/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockQuestRepo completes quests against in-memory state, once each.
type mockQuestRepo struct {
	quests   map[int64]*models.Quest
	balances map[int64]int
}

func newMockQuestRepo(quests ...*models.Quest) *mockQuestRepo {
	m := &mockQuestRepo{quests: make(map[int64]*models.Quest), balances: make(map[int64]int)}
	for _, q := range quests {
		m.quests[q.ID] = q
	}
	return m
}

func (m *mockQuestRepo) Create(ctx context.Context, quest *models.Quest) error {
	quest.ID = int64(len(m.quests) + 1)
	m.quests[quest.ID] = quest
	return nil
}

func (m *mockQuestRepo) GetByID(ctx context.Context, id int64) (*models.Quest, error) {
	return m.quests[id], nil
}

func (m *mockQuestRepo) ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error) {
	var out []*models.Quest
	for _, q := range m.quests {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestRepo) Complete(ctx context.Context, questID int64) (*models.Quest, int, error) {
	quest, ok := m.quests[questID]
	if !ok {
		return nil, 0, repositories.ErrQuestMissing
	}
	if quest.Completed {
		return nil, 0, repositories.ErrQuestCompleted
	}
	quest.Completed = true
	m.balances[quest.UserID] += quest.Points
	return quest, m.balances[quest.UserID], nil
}

func newTestQuestService(quests *mockQuestRepo, users *mockUserRepo) (QuestService, *stubEventBus) {
	bus := &stubEventBus{}
	return NewQuestService(quests, users, newTestCache(), bus, zap.NewNop()), bus
}

func TestCompleteQuestGrantsPointsOnce(t *testing.T) {
	repo := newMockQuestRepo(&models.Quest{ID: 1, Title: "First scan", Points: 25, UserID: 7})
	svc, bus := newTestQuestService(repo, newMockUserRepo())

	result, err := svc.Complete(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 25, result.TotalPoints)
	assert.True(t, result.Quest.Completed)
	assert.Equal(t, []string{"quest.completed"}, bus.types())

	// Second completion is refused and no points move.
	_, err = svc.Complete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
	svcErr := GetServiceError(err)
	require.NotNil(t, svcErr)
	assert.Equal(t, "QUEST_ALREADY_COMPLETED", svcErr.Code)
	assert.Equal(t, 25, repo.balances[7])
}

func TestCompleteMissingQuestReturnsNotFound(t *testing.T) {
	svc, _ := newTestQuestService(newMockQuestRepo(), newMockUserRepo())

	_, err := svc.Complete(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestCreateQuestRequiresExistingUser(t *testing.T) {
	svc, _ := newTestQuestService(newMockQuestRepo(), newMockUserRepo())

	_, err := svc.Create(context.Background(), &CreateQuestRequest{
		Title: "Visit the lab", Points: 10, UserID: 42,
	})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestCreateQuestRejectsNonPositivePoints(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: 1})
	svc, _ := newTestQuestService(newMockQuestRepo(), users)

	_, err := svc.Create(context.Background(), &CreateQuestRequest{
		Title: "Visit the lab", Points: 0, UserID: 1,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestListByUserReturnsEmptySliceNotNil(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: 1})
	svc, _ := newTestQuestService(newMockQuestRepo(), users)

	quests, err := svc.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, quests)
	assert.Empty(t, quests)
}
