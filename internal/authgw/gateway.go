// ===============================
// FILE: internal/authgw/gateway.go
// ===============================

package authgw

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const stateCookie = "authgw_state"

// Gateway bridges the OAuth provider to the platform: the callback
// upserts the user by email and answers with a signed session token.
type Gateway struct {
	oauth           *oauth2.Config
	userinfoURL     string
	issuer          *TokenIssuer
	users           services.UserService
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewGateway creates the OAuth gateway from configuration.
func NewGateway(
	cfg *config.AuthConfig,
	users services.UserService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *Gateway {
	return &Gateway{
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       cfg.OAuthScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthorizeURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
		userinfoURL:     cfg.OAuthUserinfoURL,
		issuer:          NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		users:           users,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// Routes mounts the gateway endpoints on a mux.
func (g *Gateway) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/login", g.Login)
	mux.HandleFunc("GET /auth/callback", g.Callback)
	mux.HandleFunc("GET /auth/verify", g.VerifyToken)
}

// Login redirects the browser to the provider's consent page with a
// fresh anti-forgery state.
func (g *Gateway) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		g.responseBuilder.WriteError(w, r, services.NewInternalError("failed to start login"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, g.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback exchanges the authorization code, resolves the provider
// profile, upserts the platform user, and returns a session token.
func (g *Gateway) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		g.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("state mismatch"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		g.responseBuilder.WriteError(w, r, services.NewValidationError("authorization code missing", nil))
		return
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.logger.Warn("OAuth code exchange failed", zap.Error(err))
		g.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("code exchange failed"))
		return
	}

	profile, err := g.fetchProfile(ctx, token)
	if err != nil {
		g.logger.Error("Failed to fetch OAuth profile", zap.Error(err))
		g.responseBuilder.WriteError(w, r, services.NewServiceUnavailableError("profile fetch failed"))
		return
	}

	user, err := g.users.UpsertByEmail(ctx, profile.Email, profile.Name)
	if err != nil {
		g.responseBuilder.WriteError(w, r, err)
		return
	}

	session, err := g.issuer.Issue(user)
	if err != nil {
		g.logger.Error("Failed to sign session token", zap.Error(err))
		g.responseBuilder.WriteError(w, r, services.NewInternalError("failed to issue session"))
		return
	}

	g.logger.Info("User authenticated via OAuth",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)
	g.responseBuilder.WriteSuccess(w, r, map[string]interface{}{
		"token": session,
		"user":  user,
	})
}

// VerifyToken validates a Bearer token and echoes its claims.
func (g *Gateway) VerifyToken(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		g.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("missing bearer token"))
		return
	}

	claims, err := g.issuer.Verify(raw)
	if err != nil {
		g.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("invalid token"))
		return
	}

	g.responseBuilder.WriteSuccess(w, r, claims)
}

type providerProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (g *Gateway) fetchProfile(ctx context.Context, token *oauth2.Token) (*providerProfile, error) {
	client := g.oauth.Client(ctx, token)
	resp, err := client.Get(g.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}

	var profile providerProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("provider returned no email")
	}
	if profile.Name == "" {
		profile.Name = profile.Email
	}
	return &profile, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
