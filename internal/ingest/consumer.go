// ===============================
// FILE: internal/ingest/consumer.go
// ===============================

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"taskmaster/internal/services"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const handleTimeout = 10 * time.Second

// Consumer receives NFC tag arrivals from the broker and stores them
// through the ingest service. Instances sharing a queue group split the
// subject between them.
type Consumer struct {
	conn    *nats.Conn
	ingest  services.IngestService
	logger  *zap.Logger
	subject string
	queue   string

	sub *nats.Subscription
}

// NewConsumer creates a consumer bound to an open broker connection.
func NewConsumer(conn *nats.Conn, subject, queue string, ingest services.IngestService, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:    conn,
		ingest:  ingest,
		logger:  logger,
		subject: subject,
		queue:   queue,
	}
}

// Start subscribes to the tag subject. It returns once the subscription
// is live; message handling runs on the client's delivery goroutine.
func (c *Consumer) Start() error {
	sub, err := c.conn.QueueSubscribe(c.subject, c.queue, c.handle)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.subject, err)
	}
	c.sub = sub
	c.logger.Info("Tag consumer started",
		zap.String("subject", c.subject),
		zap.String("queue_group", c.queue),
	)
	return nil
}

// Stop unsubscribes. The broker connection is left to the caller.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	return c.sub.Unsubscribe()
}

func (c *Consumer) handle(msg *nats.Msg) {
	var tagMsg services.TagMessage
	if err := json.Unmarshal(msg.Data, &tagMsg); err != nil {
		c.logger.Warn("Dropping malformed tag message",
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	tag, inserted, err := c.ingest.StoreTag(ctx, &tagMsg)
	if err != nil {
		c.logger.Error("Failed to store tag",
			zap.String("tag_id", tagMsg.TagID),
			zap.Error(err),
		)
		return
	}
	if !inserted {
		// Duplicate delivery; already logged at debug level by the service.
		return
	}
	c.logger.Info("Tag stored",
		zap.Int64("id", tag.ID),
		zap.String("tag_id", tag.TagID),
	)
}
