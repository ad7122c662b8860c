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

func newTestUserService(repo *mockUserRepo) (UserService, *stubEventBus) {
	bus := &stubEventBus{}
	return NewUserService(repo, newTestCache(), bus, zap.NewNop()), bus
}

func TestCreateUserStartsWithZeroPoints(t *testing.T) {
	repo := newMockUserRepo()
	svc, bus := newTestUserService(repo)

	user, err := svc.Create(context.Background(), &CreateUserRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 0, user.TotalPoints)
	assert.Nil(t, user.CurrentBadgeID)
	assert.Equal(t, []string{"user.created"}, bus.types())
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	svc, _ := newTestUserService(repo)

	_, err := svc.Create(context.Background(), &CreateUserRequest{Name: "Other", Email: "ada@example.com"})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestCreateUserMapsUniqueViolationToConflict(t *testing.T) {
	// A concurrent create can slip past the pre-check and hit the unique
	// index; that still has to read as a conflict, not an internal error.
	repo := newMockUserRepo()
	repo.createErr = fmt.Errorf("user ada@example.com: %w", repositories.ErrEmailTaken)
	svc, _ := newTestUserService(repo)

	_, err := svc.Create(context.Background(), &CreateUserRequest{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.True(t, IsConflictError(err))
}

func TestCreateUserRejectsBadEmail(t *testing.T) {
	svc, _ := newTestUserService(newMockUserRepo())

	_, err := svc.Create(context.Background(), &CreateUserRequest{Name: "Ada", Email: "nope"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestGetByIDMissingUserReturnsNotFound(t *testing.T) {
	svc, _ := newTestUserService(newMockUserRepo())

	_, err := svc.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestGetByAPIKey(t *testing.T) {
	key := "abc123"
	repo := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com", APIKey: &key})
	svc, _ := newTestUserService(repo)

	user, err := svc.GetByAPIKey(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	_, err = svc.GetByAPIKey(context.Background(), "")
	assert.True(t, IsErrorType(err, "UNAUTHORIZED"))

	_, err = svc.GetByAPIKey(context.Background(), "wrong")
	assert.True(t, IsErrorType(err, "UNAUTHORIZED"))
}

func TestIssueAPIKeyReplacesPrevious(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	svc, _ := newTestUserService(repo)

	first, err := svc.IssueAPIKey(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, first.APIKey, 64) // 32 random bytes, hex encoded

	second, err := svc.IssueAPIKey(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEqual(t, first.APIKey, second.APIKey)
	require.NotNil(t, repo.users[1].APIKey)
	assert.Equal(t, second.APIKey, *repo.users[1].APIKey)
}

func TestUpdateUserTracksChangedFields(t *testing.T) {
	repo := newMockUserRepo(&models.User{ID: 1, Name: "Ada", Email: "ada@example.com"})
	svc, bus := newTestUserService(repo)

	user, err := svc.Update(context.Background(), 1, &UpdateUserRequest{Name: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", user.Name)
	assert.Equal(t, []string{"user.updated"}, bus.types())
}

func TestDeleteMissingUserReturnsNotFound(t *testing.T) {
	svc, _ := newTestUserService(newMockUserRepo())

	err := svc.Delete(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestUpsertByEmailCreatesThenUpdates(t *testing.T) {
	repo := newMockUserRepo()
	svc, _ := newTestUserService(repo)

	created, err := svc.UpsertByEmail(context.Background(), "ada@example.com", "Ada")
	require.NoError(t, err)

	again, err := svc.UpsertByEmail(context.Background(), "ada@example.com", "Ada Lovelace")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Ada Lovelace", again.Name)
}
