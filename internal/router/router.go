// ===============================
// FILE: internal/router/router.go
// ===============================

package router

import (
	"net/http"

	"taskmaster/internal/handlers/api/v1/badges"
	"taskmaster/internal/handlers/api/v1/health"
	"taskmaster/internal/handlers/api/v1/points"
	"taskmaster/internal/handlers/api/v1/quests"
	"taskmaster/internal/handlers/api/v1/ranking"
	"taskmaster/internal/handlers/api/v1/tags"
	"taskmaster/internal/handlers/api/v1/users"
	"taskmaster/internal/middleware"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// New builds the HTTP handler tree: controllers, middleware chain, and
// route table.
func New(serviceCollection *services.ServiceCollection, logger *zap.Logger) (http.Handler, error) {
	responseBuilder := response.NewBuilder(response.DefaultConfig(), logger)

	userController := users.NewUserController(serviceCollection, logger, responseBuilder)
	pointsController := points.NewPointsController(serviceCollection, logger, responseBuilder)
	badgeController := badges.NewBadgeController(serviceCollection, logger, responseBuilder)
	questController := quests.NewQuestController(serviceCollection, logger, responseBuilder)
	rankingController := ranking.NewRankingController(serviceCollection, logger, responseBuilder)
	tagController := tags.NewTagController(serviceCollection, logger, responseBuilder)
	healthController := health.NewHealthController(serviceCollection, logger, responseBuilder)

	liveHub, err := ranking.NewLiveHub(serviceCollection, logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Health endpoints stay outside authentication.
	mux.HandleFunc("GET /health", healthController.Liveness)
	mux.HandleFunc("GET /health/ready", healthController.Readiness)

	// Users
	mux.HandleFunc("POST /api/v1/users", userController.CreateUser)
	mux.HandleFunc("GET /api/v1/users", userController.ListUsers)
	mux.HandleFunc("GET /api/v1/users/{id}", userController.GetUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", userController.UpdateUser)
	mux.HandleFunc("DELETE /api/v1/users/{id}", userController.DeleteUser)
	mux.HandleFunc("POST /api/v1/users/{id}/api-key", userController.IssueAPIKey)
	mux.HandleFunc("DELETE /api/v1/users/{id}/api-key", userController.RevokeAPIKey)

	// Points ledger
	mux.HandleFunc("POST /api/v1/users/{id}/points/grant", pointsController.Grant)
	mux.HandleFunc("POST /api/v1/users/{id}/points/deduct", pointsController.Deduct)
	mux.HandleFunc("GET /api/v1/users/{id}/points/history", pointsController.History)

	// Badges
	mux.HandleFunc("POST /api/v1/badges", badgeController.AddBadge)
	mux.HandleFunc("GET /api/v1/badges", badgeController.ListBadges)
	mux.HandleFunc("DELETE /api/v1/badges/{id}", badgeController.RemoveBadge)
	mux.HandleFunc("POST /api/v1/badges/assign", badgeController.AssignAll)

	// Quests
	mux.HandleFunc("POST /api/v1/quests", questController.CreateQuest)
	mux.HandleFunc("POST /api/v1/quests/{id}/complete", questController.CompleteQuest)
	mux.HandleFunc("GET /api/v1/users/{id}/quests", questController.ListUserQuests)

	// Ranking
	mux.HandleFunc("GET /api/v1/ranking", rankingController.GetRanking)
	mux.HandleFunc("GET /ws/ranking", liveHub.ServeWS)

	// NFC tags
	mux.HandleFunc("POST /api/v1/tags", tagController.IngestTag)
	mux.HandleFunc("GET /api/v1/tags", tagController.ListTags)

	handler := middleware.Chain(
		middleware.RequestID(logger),
		middleware.Logger(logger),
		middleware.Recovery(responseBuilder, logger),
		middleware.CORS(),
		middleware.RateLimit(serviceCollection.Cache, middleware.DefaultRateLimiterConfig(), responseBuilder, logger),
		authGate(serviceCollection, responseBuilder, logger),
	)(mux)

	return handler, nil
}

// authGate applies API key authentication to everything except health
// checks and the websocket ranking feed.
func authGate(serviceCollection *services.ServiceCollection, responseBuilder *response.Builder, logger *zap.Logger) middleware.Middleware {
	authenticate := middleware.APIKeyAuth(serviceCollection.User, responseBuilder, logger)
	return func(next http.Handler) http.Handler {
		authed := authenticate(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}
			authed.ServeHTTP(w, r)
		})
	}
}

func isPublic(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/health/ready", "/ws/ranking":
		return true
	}
	// User creation has no key to present yet.
	return r.Method == http.MethodPost && r.URL.Path == "/api/v1/users"
}
