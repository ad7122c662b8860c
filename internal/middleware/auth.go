package middleware

import (
	"net/http"
	"strings"

	"taskmaster/internal/contextutils"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// HeaderAPIKey carries the caller's API key.
const HeaderAPIKey = "X-API-Key"

// APIKeyAuth authenticates requests by API key and attaches the resolved
// user to the context. Keys are accepted from the X-API-Key header or a
// Bearer token.
func APIKeyAuth(users services.UserService, builder *response.Builder, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractAPIKey(r)
			if key == "" {
				builder.WriteError(w, r, services.NewUnauthorizedError("missing API key"))
				return
			}

			user, err := users.GetByAPIKey(r.Context(), key)
			if err != nil {
				builder.WriteError(w, r, err)
				return
			}

			logger.Debug("Request authenticated",
				zap.Int64("user_id", user.ID),
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
			)

			ctx := contextutils.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAPIKey(r *http.Request) string {
	if key := r.Header.Get(HeaderAPIKey); key != "" {
		return key
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
