// ===============================
// FILE: internal/notify/expo.go
// ===============================

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// expoBatchSize is the maximum number of messages Expo accepts per request.
const expoBatchSize = 100

// PushMessage is one message in an Expo push request.
type PushMessage struct {
	To    []string `json:"to"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Sound string   `json:"sound,omitempty"`
}

// PushTicket is Expo's per-message receipt.
type PushTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type pushResponse struct {
	Data []PushTicket `json:"data"`
}

// ExpoClient talks to the Expo push API over HTTP with retries.
type ExpoClient struct {
	url     string
	client  *http.Client
	retries int
	logger  *zap.Logger
}

// NewExpoClient creates an Expo push client.
func NewExpoClient(url string, timeout time.Duration, retries int, logger *zap.Logger) *ExpoClient {
	return &ExpoClient{
		url:     url,
		client:  &http.Client{Timeout: timeout},
		retries: retries,
		logger:  logger,
	}
}

// Send pushes a title and body to the given recipient tokens, batching
// per Expo's request limit. It returns the tokens Expo reported as no
// longer registered so the caller can drop them.
func (c *ExpoClient) Send(ctx context.Context, tokens []string, title, body string) ([]string, error) {
	var dead []string
	for start := 0; start < len(tokens); start += expoBatchSize {
		end := start + expoBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		tickets, err := c.sendBatch(ctx, batch, title, body)
		if err != nil {
			return dead, err
		}
		for i, ticket := range tickets {
			if ticket.Status != "ok" && ticket.Details.Error == "DeviceNotRegistered" && i < len(batch) {
				dead = append(dead, batch[i])
			}
		}
	}
	return dead, nil
}

func (c *ExpoClient) sendBatch(ctx context.Context, tokens []string, title, body string) ([]PushTicket, error) {
	payload, err := json.Marshal(PushMessage{To: tokens, Title: title, Body: body, Sound: "default"})
	if err != nil {
		return nil, fmt.Errorf("marshal push message: %w", err)
	}

	var tickets []PushTicket
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			c.logger.Warn("Expo push request failed", zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn("Expo push rejected, will retry", zap.Int("status", resp.StatusCode))
			return fmt.Errorf("expo push returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("expo push returned %d: %s", resp.StatusCode, raw))
		}

		var parsed pushResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("decode expo response: %w", err))
		}
		tickets = parsed.Data
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.retries)), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return tickets, nil
}
