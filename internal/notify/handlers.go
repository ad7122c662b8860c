// ===============================
// FILE: internal/notify/handlers.go
// ===============================

package notify

import (
	"encoding/json"
	"net/http"

	"taskmaster/internal/response"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

// Controller exposes the notification relay over HTTP.
type Controller struct {
	relay           *Relay
	responseBuilder *response.Builder
	logger          *zap.Logger
}

// NewController creates the relay HTTP controller.
func NewController(relay *Relay, logger *zap.Logger, responseBuilder *response.Builder) *Controller {
	return &Controller{
		relay:           relay,
		responseBuilder: responseBuilder,
		logger:          logger,
	}
}

// Routes mounts the relay endpoints on a mux.
func (c *Controller) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /register_token", c.RegisterToken)
	mux.HandleFunc("POST /send_notification", c.SendNotification)
	mux.HandleFunc("POST /send_email", c.SendEmail)
}

// RegisterToken handles POST /register_token
func (c *Controller) RegisterToken(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.relay.RegisterToken(r.Context(), &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, map[string]string{"status": "registered"})
}

// SendNotification handles POST /send_notification
func (c *Controller) SendNotification(w http.ResponseWriter, r *http.Request) {
	var req services.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	delivered, err := c.relay.Broadcast(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]int{"delivered": delivered})
}

// SendEmail handles POST /send_email
func (c *Controller) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req services.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := c.relay.SendEmail(r.Context(), &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, map[string]string{"status": "sent"})
}
