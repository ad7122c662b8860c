package quests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskmaster/internal/models"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockQuestService scripts the service layer for handler tests.
type mockQuestService struct {
	completeResult *services.CompleteQuestResult
	completeErr    error
}

func (m *mockQuestService) Create(ctx context.Context, req *services.CreateQuestRequest) (*models.Quest, error) {
	return &models.Quest{ID: 1, Title: req.Title, Points: req.Points, UserID: req.UserID}, nil
}

func (m *mockQuestService) Complete(ctx context.Context, questID int64) (*services.CompleteQuestResult, error) {
	return m.completeResult, m.completeErr
}

func (m *mockQuestService) ListByUser(ctx context.Context, userID int64) ([]*models.Quest, error) {
	return []*models.Quest{}, nil
}

func newTestMux(svc services.QuestService) *http.ServeMux {
	logger := zap.NewNop()
	builder := response.NewBuilder(response.DefaultConfig(), logger)
	controller := NewQuestController(&services.ServiceCollection{Quest: svc}, logger, builder)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/quests", controller.CreateQuest)
	mux.HandleFunc("POST /api/v1/quests/{id}/complete", controller.CompleteQuest)
	mux.HandleFunc("GET /api/v1/users/{id}/quests", controller.ListUserQuests)
	return mux
}

func TestCompleteQuestReturnsResult(t *testing.T) {
	mux := newTestMux(&mockQuestService{
		completeResult: &services.CompleteQuestResult{
			Quest:       &models.Quest{ID: 5, Title: "First scan", Points: 25, Completed: true, UserID: 1},
			TotalPoints: 25,
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests/5/complete", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			TotalPoints int `json:"total_points"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 25, resp.Data.TotalPoints)
}

func TestCompleteQuestAlreadyCompletedMapsTo422(t *testing.T) {
	mux := newTestMux(&mockQuestService{
		completeErr: services.NewBusinessError("quest already completed", "QUEST_ALREADY_COMPLETED"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests/5/complete", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "QUEST_ALREADY_COMPLETED")
}

func TestCompleteQuestRejectsBadID(t *testing.T) {
	mux := newTestMux(&mockQuestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests/abc/complete", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateQuestDecodesBody(t *testing.T) {
	mux := newTestMux(&mockQuestService{})

	body := `{"title":"Visit the lab","points":10,"user_id":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Visit the lab")
}

func TestCreateQuestRejectsMalformedJSON(t *testing.T) {
	mux := newTestMux(&mockQuestService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
