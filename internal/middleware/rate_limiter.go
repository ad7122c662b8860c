package middleware

import (
	"fmt"
	"net/http"
	"time"

	"taskmaster/internal/cache"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// RateLimiterConfig tunes the per-client fixed window limiter.
type RateLimiterConfig struct {
	RequestsPerWindow int64
	Window            time.Duration
}

// DefaultRateLimiterConfig allows 120 requests per minute per client.
func DefaultRateLimiterConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		RequestsPerWindow: 120,
		Window:            time.Minute,
	}
}

// RateLimit throttles clients by IP using the shared cache, so the limit
// holds across instances when the cache is Redis.
func RateLimit(appCache cache.Cache, config *RateLimiterConfig, builder *response.Builder, logger *zap.Logger) Middleware {
	if config == nil {
		config = DefaultRateLimiterConfig()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			window := time.Now().Unix() / int64(config.Window.Seconds())
			key := fmt.Sprintf("ratelimit:%s:%d", getClientIP(r), window)

			count, err := appCache.Increment(r.Context(), key, 1)
			if err != nil {
				// Fail open: a broken cache should not take the API down
				logger.Warn("Rate limiter cache error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count > config.RequestsPerWindow {
				builder.WriteError(w, r, services.NewRateLimitError("rate limit exceeded", map[string]interface{}{
					"limit":  config.RequestsPerWindow,
					"window": config.Window.String(),
				}))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
