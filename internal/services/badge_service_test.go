package services

import (
	"context"
	"fmt"
	"testing"

	"taskmaster/internal/models"
	"taskmaster/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockBadgeRepo serves a fixed catalog and user set, recording badge writes.
type mockBadgeRepo struct {
	badges    []*models.Badge
	targets   []*models.User
	writes    map[int64]*int64
	createErr error
}

func newMockBadgeRepo(badges []*models.Badge, targets []*models.User) *mockBadgeRepo {
	return &mockBadgeRepo{badges: badges, targets: targets, writes: make(map[int64]*int64)}
}

func (m *mockBadgeRepo) Create(ctx context.Context, badge *models.Badge) error {
	if m.createErr != nil {
		return m.createErr
	}
	badge.ID = int64(len(m.badges) + 1)
	m.badges = append(m.badges, badge)
	return nil
}

func (m *mockBadgeRepo) GetByID(ctx context.Context, id int64) (*models.Badge, error) {
	for _, b := range m.badges {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, nil
}

func (m *mockBadgeRepo) Delete(ctx context.Context, id int64) error { return nil }

func (m *mockBadgeRepo) List(ctx context.Context) ([]*models.Badge, error) {
	return m.badges, nil
}

func (m *mockBadgeRepo) ListAssignmentTargets(ctx context.Context) ([]*models.User, error) {
	return m.targets, nil
}

func (m *mockBadgeRepo) UpdateCurrentBadge(ctx context.Context, userID int64, badgeID *int64) error {
	m.writes[userID] = badgeID
	return nil
}

func newTestBadgeService(repo *mockBadgeRepo) (BadgeService, *stubEventBus) {
	bus := &stubEventBus{}
	return NewBadgeService(repo, newTestCache(), bus, zap.NewNop()), bus
}

func badgePtr(id int64) *int64 { return &id }

func TestAssignAllPicksHighestQualifyingBadge(t *testing.T) {
	badges := []*models.Badge{
		{ID: 1, Name: "Bronze", Threshold: 10},
		{ID: 2, Name: "Silver", Threshold: 50},
		{ID: 3, Name: "Gold", Threshold: 100},
	}
	users := []*models.User{
		{ID: 1, Name: "Ada", TotalPoints: 120},
		{ID: 2, Name: "Grace", TotalPoints: 55},
		{ID: 3, Name: "Alan", TotalPoints: 3},
	}
	repo := newMockBadgeRepo(badges, users)
	svc, _ := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Checked)
	require.Len(t, result.Changes, 2) // Alan qualifies for nothing and had nothing

	assert.Equal(t, "Gold", result.Changes[0].NewBadge)
	assert.Equal(t, "Silver", result.Changes[1].NewBadge)
	assert.Equal(t, badgePtr(3), repo.writes[1])
	assert.Equal(t, badgePtr(2), repo.writes[2])
	_, wrote := repo.writes[3]
	assert.False(t, wrote)
}

func TestAssignAllIsIdempotent(t *testing.T) {
	badges := []*models.Badge{{ID: 1, Name: "Bronze", Threshold: 10}}
	users := []*models.User{
		{ID: 1, Name: "Ada", TotalPoints: 40, CurrentBadgeID: badgePtr(1)},
	}
	repo := newMockBadgeRepo(badges, users)
	svc, bus := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Empty(t, result.Changes)
	assert.Empty(t, repo.writes)
	assert.Empty(t, bus.types())
}

func TestAssignAllClearsBadgeWhenNoneQualifies(t *testing.T) {
	badges := []*models.Badge{{ID: 1, Name: "Bronze", Threshold: 10}}
	users := []*models.User{
		{ID: 1, Name: "Ada", TotalPoints: 4, CurrentBadgeID: badgePtr(1)},
	}
	repo := newMockBadgeRepo(badges, users)
	svc, bus := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.True(t, result.Changes[0].Cleared)
	assert.Empty(t, result.Changes[0].NewBadge)
	assert.Nil(t, repo.writes[1])
	assert.Equal(t, []string{"badge.cleared"}, bus.types())
}

func TestAssignAllTieBreaksEqualThresholdsByAge(t *testing.T) {
	// Two badges at the same threshold; the older one (lower id) wins.
	badges := []*models.Badge{
		{ID: 7, Name: "Newer", Threshold: 20},
		{ID: 2, Name: "Older", Threshold: 20},
	}
	users := []*models.User{{ID: 1, Name: "Ada", TotalPoints: 25}}
	repo := newMockBadgeRepo(badges, users)
	svc, _ := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Changes, 1)
	assert.Equal(t, "Older", result.Changes[0].NewBadge)
}

func TestAssignAllWithEmptyCatalogFailsWithoutWriting(t *testing.T) {
	users := []*models.User{
		{ID: 1, Name: "Ada", TotalPoints: 500, CurrentBadgeID: badgePtr(9)},
		{ID: 2, Name: "Grace", TotalPoints: 0},
	}
	repo := newMockBadgeRepo(nil, users)
	svc, bus := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Nil(t, result)

	// No clears, no events: the sweep must be a no-op.
	assert.Empty(t, repo.writes)
	assert.Empty(t, bus.types())
}

func TestAssignAllWithNoUsersReturnsNotFound(t *testing.T) {
	badges := []*models.Badge{{ID: 1, Name: "Bronze", Threshold: 10}}
	repo := newMockBadgeRepo(badges, nil)
	svc, _ := newTestBadgeService(repo)

	result, err := svc.AssignAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
	assert.Nil(t, result)
}

func TestPickBadge(t *testing.T) {
	badges := []*models.Badge{
		{ID: 3, Name: "Gold", Threshold: 100},
		{ID: 2, Name: "Silver", Threshold: 50},
		{ID: 1, Name: "Bronze", Threshold: 0},
	}

	assert.Equal(t, "Gold", pickBadge(badges, 150).Name)
	assert.Equal(t, "Silver", pickBadge(badges, 99).Name)
	assert.Equal(t, "Bronze", pickBadge(badges, 0).Name)
	assert.Nil(t, pickBadge(nil, 1000))
}

func TestAddBadgeRejectsInvalidRequest(t *testing.T) {
	repo := newMockBadgeRepo(nil, nil)
	svc, _ := newTestBadgeService(repo)

	_, err := svc.Add(context.Background(), &CreateBadgeRequest{Name: "", Threshold: -1})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestAddDuplicateNameReturnsConflict(t *testing.T) {
	repo := newMockBadgeRepo(nil, nil)
	repo.createErr = fmt.Errorf("badge %q: %w", "Gold", repositories.ErrBadgeNameTaken)
	svc, _ := newTestBadgeService(repo)

	_, err := svc.Add(context.Background(), &CreateBadgeRequest{Name: "Gold", Threshold: 100})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestAddStorageFailureIsNotConflict(t *testing.T) {
	repo := newMockBadgeRepo(nil, nil)
	repo.createErr = fmt.Errorf("connection refused")
	svc, _ := newTestBadgeService(repo)

	_, err := svc.Add(context.Background(), &CreateBadgeRequest{Name: "Gold", Threshold: 100})
	require.Error(t, err)
	assert.False(t, IsConflictError(err))
	assert.True(t, IsErrorType(err, "INTERNAL_ERROR"))
}

func TestRemoveMissingBadgeReturnsNotFound(t *testing.T) {
	repo := newMockBadgeRepo(nil, nil)
	svc, _ := newTestBadgeService(repo)

	err := svc.Remove(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}
