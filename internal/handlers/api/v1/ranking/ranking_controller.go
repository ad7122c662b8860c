// ===============================
// FILE: internal/handlers/api/v1/ranking/ranking_controller.go
// ===============================

package ranking

import (
	"net/http"

	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// RankingController serves the read-only ranking view.
type RankingController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewRankingController creates a new ranking API controller.
func NewRankingController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *RankingController {
	return &RankingController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// GetRanking handles GET /api/v1/ranking
//
// Users are ordered by total points descending; ties keep insertion
// order, so equal totals rank by ascending user id.
func (c *RankingController) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := c.serviceCollection.Ranking.Rank(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, ranking)
}
