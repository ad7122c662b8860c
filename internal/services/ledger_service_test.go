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

// mockPointRepo applies grants and deducts against an in-memory balance,
// clamping the balance while recording the raw delta, mirroring the
// repository's transaction.
type mockPointRepo struct {
	balances map[int64]int
	entries  map[int64][]*models.PointEntry
}

func newMockPointRepo(balances map[int64]int) *mockPointRepo {
	return &mockPointRepo{balances: balances, entries: make(map[int64][]*models.PointEntry)}
}

func (m *mockPointRepo) apply(userID int64, delta int, message *string) (int, error) {
	balance, ok := m.balances[userID]
	if !ok {
		return 0, repositories.ErrUserMissing
	}
	newTotal := balance + delta
	if newTotal < 0 {
		newTotal = 0
	}
	m.balances[userID] = newTotal
	m.entries[userID] = append(m.entries[userID], &models.PointEntry{UserID: userID, Delta: delta, Message: message})
	return newTotal, nil
}

func (m *mockPointRepo) Grant(ctx context.Context, userID int64, delta int, message *string) (int, error) {
	return m.apply(userID, delta, message)
}

func (m *mockPointRepo) Deduct(ctx context.Context, userID int64, delta int, message *string) (int, error) {
	return m.apply(userID, -delta, message)
}

func (m *mockPointRepo) HistoryPage(ctx context.Context, userID int64, params models.PaginationParams) ([]*models.PointEntry, int64, error) {
	all := m.entries[userID]
	total := int64(len(all))
	if params.Skip >= len(all) {
		return nil, total, nil
	}
	end := params.Skip + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[params.Skip:end], total, nil
}

func newTestLedgerService(points *mockPointRepo, users *mockUserRepo) (LedgerService, *stubEventBus) {
	bus := &stubEventBus{}
	return NewLedgerService(points, users, newTestCache(), bus, zap.NewNop()), bus
}

func TestGrantIncreasesBalance(t *testing.T) {
	points := newMockPointRepo(map[int64]int{1: 5})
	svc, bus := newTestLedgerService(points, newMockUserRepo())

	result, err := svc.Grant(context.Background(), 1, &PointsRequest{Amount: 10})
	require.NoError(t, err)

	assert.Equal(t, 15, result.TotalPoints)
	assert.Equal(t, []string{"points.granted"}, bus.types())
}

func TestDeductClampsBalanceButKeepsRawDelta(t *testing.T) {
	points := newMockPointRepo(map[int64]int{1: 5})
	svc, _ := newTestLedgerService(points, newMockUserRepo())

	result, err := svc.Deduct(context.Background(), 1, &PointsRequest{Amount: 1000})
	require.NoError(t, err)

	// Balance clamps at zero while the ledger keeps the full deduction.
	assert.Equal(t, 0, result.TotalPoints)
	require.Len(t, points.entries[1], 1)
	assert.Equal(t, -1000, points.entries[1][0].Delta)
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	points := newMockPointRepo(map[int64]int{1: 5})
	svc, _ := newTestLedgerService(points, newMockUserRepo())

	for _, amount := range []int{0, -5} {
		_, err := svc.Grant(context.Background(), 1, &PointsRequest{Amount: amount})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	}
}

func TestGrantUnknownUserReturnsNotFound(t *testing.T) {
	points := newMockPointRepo(map[int64]int{})
	svc, _ := newTestLedgerService(points, newMockUserRepo())

	_, err := svc.Grant(context.Background(), 99, &PointsRequest{Amount: 10})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestHistoryPaginationRemaining(t *testing.T) {
	points := newMockPointRepo(map[int64]int{1: 0})
	for i := 0; i < 7; i++ {
		_, err := points.Grant(context.Background(), 1, 1, nil)
		require.NoError(t, err)
	}
	users := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com", TotalPoints: 7})
	svc, _ := newTestLedgerService(points, users)

	history, err := svc.History(context.Background(), 1, models.PaginationParams{Skip: 2, Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, int64(7), history.TotalCount)
	assert.Len(t, history.Entries, 3)
	assert.Equal(t, int64(2), history.Pagination.Remaining)
	assert.Equal(t, "Ada", history.Name)
	assert.Equal(t, 7, history.TotalPoints)
}

func TestHistoryPastTheEndLeavesNoRemaining(t *testing.T) {
	points := newMockPointRepo(map[int64]int{1: 0})
	_, err := points.Grant(context.Background(), 1, 1, nil)
	require.NoError(t, err)
	users := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	svc, _ := newTestLedgerService(points, users)

	history, err := svc.History(context.Background(), 1, models.PaginationParams{Skip: 5, Limit: 10})
	require.NoError(t, err)

	assert.Empty(t, history.Entries)
	assert.Equal(t, int64(0), history.Pagination.Remaining)
}

func TestHistoryUnknownUserReturnsNotFound(t *testing.T) {
	svc, _ := newTestLedgerService(newMockPointRepo(nil), newMockUserRepo())

	_, err := svc.History(context.Background(), 42, models.PaginationParams{Limit: 10})
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestHistoryRejectsInvalidPagination(t *testing.T) {
	users := newMockUserRepo(&models.User{ID: 1})
	svc, _ := newTestLedgerService(newMockPointRepo(nil), users)

	_, err := svc.History(context.Background(), 1, models.PaginationParams{Skip: -1, Limit: 10})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
