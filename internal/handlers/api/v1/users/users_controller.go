// ===============================
// FILE: internal/handlers/api/v1/users/users_controller.go
// ===============================

package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"taskmaster/internal/models"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// UserController handles participant management API endpoints.
type UserController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewUserController creates a new user API controller.
func NewUserController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// ===============================
// CORE CRUD OPERATIONS
// ===============================

// CreateUser handles POST /api/v1/users
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode create user request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	user, err := c.serviceCollection.User.Create(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, user)
}

// GetUser handles GET /api/v1/users/{id}
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	user, err := c.serviceCollection.User.GetByID(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// ListUsers handles GET /api/v1/users
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := parsePagination(r)

	users, total, err := c.serviceCollection.User.List(r.Context(), params)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WritePaginated(w, r, users, params.Skip, params.Limit, total, len(users))
}

// UpdateUser handles PUT /api/v1/users/{id}
func (c *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	var req services.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode update user request", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	user, err := c.serviceCollection.User.Update(r.Context(), id, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// DeleteUser handles DELETE /api/v1/users/{id}
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	if err := c.serviceCollection.User.Delete(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// ===============================
// API KEY MANAGEMENT
// ===============================

// IssueAPIKey handles POST /api/v1/users/{id}/api-key
func (c *UserController) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	key, err := c.serviceCollection.User.IssueAPIKey(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.logger.Info("API key issued", zap.Int64("user_id", id))
	c.responseBuilder.WriteCreated(w, r, key)
}

// RevokeAPIKey handles DELETE /api/v1/users/{id}/api-key
func (c *UserController) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	if err := c.serviceCollection.User.RevokeAPIKey(r.Context(), id); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteNoContent(w, r)
}

// ===============================
// HELPERS
// ===============================

func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func parsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{Limit: 20}
	if v := r.URL.Query().Get("skip"); v != "" {
		if skip, err := strconv.Atoi(v); err == nil && skip >= 0 {
			params.Skip = skip
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			params.Limit = limit
		}
	}
	return params
}
