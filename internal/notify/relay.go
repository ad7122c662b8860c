// ===============================
// FILE: internal/notify/relay.go
// ===============================

package notify

import (
	"context"
	"fmt"

	"taskmaster/internal/repositories"
	"taskmaster/internal/services"
	"taskmaster/internal/validation"

	"go.uber.org/zap"
)

// Relay fans a notification out to every registered push token and
// proxies one-off mail sends. It prunes tokens Expo reports dead.
type Relay struct {
	tokens repositories.TokenRepository
	expo   *ExpoClient
	mailer *Mailer
	logger *zap.Logger
}

// NewRelay creates the notification relay.
func NewRelay(tokens repositories.TokenRepository, expo *ExpoClient, mailer *Mailer, logger *zap.Logger) *Relay {
	return &Relay{
		tokens: tokens,
		expo:   expo,
		mailer: mailer,
		logger: logger,
	}
}

// RegisterToken stores an Expo push token after validating its shape.
func (s *Relay) RegisterToken(ctx context.Context, req *services.RegisterTokenRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return services.NewValidationError("invalid push token", err)
	}
	if err := s.tokens.Register(ctx, req.Token); err != nil {
		return services.NewInternalError("failed to register token")
	}
	return nil
}

// Broadcast pushes the notification to every registered token.
func (s *Relay) Broadcast(ctx context.Context, req *services.SendNotificationRequest) (int, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return 0, services.NewValidationError("invalid notification", err)
	}

	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return 0, services.NewInternalError("failed to load tokens")
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	dead, err := s.expo.Send(ctx, tokens, req.Title, req.Body)
	for _, token := range dead {
		if delErr := s.tokens.Delete(ctx, token); delErr != nil {
			s.logger.Warn("Failed to prune dead token", zap.Error(delErr))
		}
	}
	if err != nil {
		s.logger.Error("Push broadcast failed", zap.Error(err))
		return 0, services.NewServiceUnavailableError("push delivery failed")
	}

	delivered := len(tokens) - len(dead)
	s.logger.Info("Notification broadcast",
		zap.Int("delivered", delivered),
		zap.Int("pruned", len(dead)),
	)
	return delivered, nil
}

// SendEmail delivers a single plain-text message.
func (s *Relay) SendEmail(ctx context.Context, req *services.SendEmailRequest) error {
	if err := validation.ValidateStruct(req); err != nil {
		return services.NewValidationError("invalid email request", err)
	}
	if err := s.mailer.Send([]string{req.To}, req.Subject, req.Body); err != nil {
		s.logger.Error("Mail delivery failed", zap.Error(err))
		return services.NewServiceUnavailableError(fmt.Sprintf("mail delivery to %s failed", req.To))
	}
	return nil
}
