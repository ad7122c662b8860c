// ===============================
// FILE: internal/handlers/api/v1/badges/badges_controller.go
// ===============================

package badges

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// BadgeController handles the badge catalog and assignment API endpoints.
type BadgeController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewBadgeController creates a new badge API controller.
func NewBadgeController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BadgeController {
	return &BadgeController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// ===============================
// CATALOG OPERATIONS
// ===============================

// AddBadge handles POST /api/v1/badges
func (c *BadgeController) AddBadge(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create badge request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	badge, err := c.serviceCollection.Badge.Add(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, badge)
}

// RemoveBadge handles DELETE /api/v1/badges/{id}
func (c *BadgeController) RemoveBadge(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid badge id", err))
		return
	}

	if err := c.serviceCollection.Badge.Remove(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// ListBadges handles GET /api/v1/badges
func (c *BadgeController) ListBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := c.serviceCollection.Badge.List(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, badges)
}

// ===============================
// ASSIGNMENT SWEEP
// ===============================

// AssignAll handles POST /api/v1/badges/assign
//
// Recomputes the current badge for every user and returns only the
// users whose badge actually changed.
func (c *BadgeController) AssignAll(w http.ResponseWriter, r *http.Request) {
	result, err := c.serviceCollection.Badge.AssignAll(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}
