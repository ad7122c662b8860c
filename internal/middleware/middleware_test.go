package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskmaster/internal/cache"
	"taskmaster/internal/contextutils"
	"taskmaster/internal/models"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBuilder() *response.Builder {
	return response.NewBuilder(response.DefaultConfig(), zap.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// mockUserService only implements the API key lookup; everything else is
// unused by the middleware under test.
type mockUserService struct {
	services.UserService
	user *models.User
}

func (m *mockUserService) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	if m.user != nil && m.user.APIKey != nil && *m.user.APIKey == apiKey {
		return m.user, nil
	}
	return nil, services.NewUnauthorizedError("invalid API key")
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = contextutils.GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(zap.NewNop())(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsIncomingHeader(t *testing.T) {
	var captured string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = contextutils.GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req_abc")
	rec := httptest.NewRecorder()
	RequestID(zap.NewNop())(inner).ServeHTTP(rec, req)

	assert.Equal(t, "req_abc", captured)
}

func TestRecoveryConvertsPanicTo500(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Recovery(testBuilder(), zap.NewNop())(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimitBlocksAfterBudget(t *testing.T) {
	appCache := cache.NewMemoryCache(cache.DefaultConfig(), zap.NewNop())
	defer appCache.Close()

	limited := RateLimit(appCache, &RateLimiterConfig{RequestsPerWindow: 2, Window: time.Hour}, testBuilder(), zap.NewNop())(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAPIKeyAuthAttachesUser(t *testing.T) {
	key := "valid-key"
	svc := &mockUserService{user: &models.User{ID: 9, APIKey: &key}}

	var gotUser *models.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = contextutils.GetUser(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, "valid-key")
	rec := httptest.NewRecorder()
	APIKeyAuth(svc, testBuilder(), zap.NewNop())(inner).ServeHTTP(rec, req)

	require.NotNil(t, gotUser)
	assert.Equal(t, int64(9), gotUser.ID)
}

func TestAPIKeyAuthAcceptsBearerToken(t *testing.T) {
	key := "valid-key"
	svc := &mockUserService{user: &models.User{ID: 9, APIKey: &key}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer valid-key")
	rec := httptest.NewRecorder()
	APIKeyAuth(svc, testBuilder(), zap.NewNop())(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIKeyAuthRejectsMissingAndInvalidKeys(t *testing.T) {
	svc := &mockUserService{}

	rec := httptest.NewRecorder()
	APIKeyAuth(svc, testBuilder(), zap.NewNop())(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderAPIKey, "nope")
	rec = httptest.NewRecorder()
	APIKeyAuth(svc, testBuilder(), zap.NewNop())(okHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChainOrdersMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rec := httptest.NewRecorder()
	Chain(tag("outer"), tag("inner"))(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
}
