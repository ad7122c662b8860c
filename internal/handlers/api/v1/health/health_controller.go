// ===============================
// FILE: internal/handlers/api/v1/health/health_controller.go
// ===============================

package health

import (
	"net/http"

	"taskmaster/internal/database"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// HealthController reports liveness and readiness.
type HealthController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewHealthController creates a new health controller.
func NewHealthController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *HealthController {
	return &HealthController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// Liveness handles GET /health. It answers as long as the process is up.
func (c *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, map[string]string{"status": "ok"})
}

// Readiness handles GET /health/ready. It checks every dependency and
// returns 503 when any of them is unhealthy.
func (c *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	report := c.serviceCollection.Health(r.Context())

	status := http.StatusOK
	if db, ok := report["database"].(map[string]interface{}); ok {
		if db["status"] == database.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
	}

	resp := c.responseBuilder.Success(r.Context(), report)
	c.responseBuilder.WriteJSON(w, r, resp, status)
}
