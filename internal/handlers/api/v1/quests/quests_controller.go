// ===============================
// FILE: internal/handlers/api/v1/quests/quests_controller.go
// ===============================

package quests

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// QuestController handles the quest ledger API endpoints.
type QuestController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewQuestController creates a new quest API controller.
func NewQuestController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *QuestController {
	return &QuestController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// CreateQuest handles POST /api/v1/quests
func (c *QuestController) CreateQuest(w http.ResponseWriter, r *http.Request) {
	var req services.CreateQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create quest request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	quest, err := c.serviceCollection.Quest.Create(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, quest)
}

// CompleteQuest handles POST /api/v1/quests/{id}/complete
//
// Completion is one-shot: a quest that is already completed yields a
// business error and no points are moved.
func (c *QuestController) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid quest id", err))
		return
	}

	result, err := c.serviceCollection.Quest.Complete(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}

// ListUserQuests handles GET /api/v1/users/{id}/quests
func (c *QuestController) ListUserQuests(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	quests, err := c.serviceCollection.Quest.ListByUser(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, quests)
}
