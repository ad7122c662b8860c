// ===============================
// FILE: internal/handlers/api/v1/points/points_controller.go
// ===============================

package points

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"taskmaster/internal/models"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// PointsController handles the points ledger API endpoints.
type PointsController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewPointsController creates a new points API controller.
func NewPointsController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *PointsController {
	return &PointsController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// ===============================
// LEDGER OPERATIONS
// ===============================

// Grant handles POST /api/v1/users/{id}/points/grant
func (c *PointsController) Grant(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, c.serviceCollection.Ledger.Grant)
}

// Deduct handles POST /api/v1/users/{id}/points/deduct
func (c *PointsController) Deduct(w http.ResponseWriter, r *http.Request) {
	c.apply(w, r, c.serviceCollection.Ledger.Deduct)
}

// History handles GET /api/v1/users/{id}/points/history
func (c *PointsController) History(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	params := models.PaginationParams{Limit: 20}
	if v := r.URL.Query().Get("skip"); v != "" {
		if skip, err := strconv.Atoi(v); err == nil {
			params.Skip = skip
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			params.Limit = limit
		}
	}

	history, err := c.serviceCollection.Ledger.History(r.Context(), userID, params)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, history)
}

func (c *PointsController) apply(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, userID int64, req *services.PointsRequest) (*services.PointsResult, error),
) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	var req services.PointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode points request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := op(r.Context(), userID, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, result)
}
