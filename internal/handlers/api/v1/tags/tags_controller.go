// ===============================
// FILE: internal/handlers/api/v1/tags/tags_controller.go
// ===============================

package tags

import (
	"encoding/json"
	"net/http"

	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// TagController handles NFC tag arrival API endpoints. The broker
// consumer is the primary ingest path; the HTTP endpoint exists for
// readers that talk directly to the API.
type TagController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewTagController creates a new tag API controller.
func NewTagController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *TagController {
	return &TagController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// IngestTag handles POST /api/v1/tags
//
// A tag id seen before is acknowledged but not stored again.
func (c *TagController) IngestTag(w http.ResponseWriter, r *http.Request) {
	var msg services.TagMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		c.logger.Warn("Failed to decode tag message", zap.Error(err))
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	tag, inserted, err := c.serviceCollection.Ingest.StoreTag(r.Context(), &msg)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if !inserted {
		c.responseBuilder.WriteSuccess(w, r, tag)
		return
	}
	c.responseBuilder.WriteCreated(w, r, tag)
}

// ListTags handles GET /api/v1/tags
func (c *TagController) ListTags(w http.ResponseWriter, r *http.Request) {
	tagList, err := c.serviceCollection.Ingest.ListTags(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, tagList)
}
