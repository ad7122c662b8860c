// ===============================
// FILE: internal/ingest/publisher.go
// ===============================

package ingest

import (
	"encoding/json"
	"fmt"

	"taskmaster/internal/services"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher emits NFC tag arrivals onto the broker. The reader daemon
// uses it to forward tags scanned at the desk.
type Publisher struct {
	conn    *nats.Conn
	logger  *zap.Logger
	subject string
}

// NewPublisher creates a publisher bound to an open broker connection.
func NewPublisher(conn *nats.Conn, subject string, logger *zap.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger, subject: subject}
}

// PublishTag sends one tag arrival and flushes the connection so the
// caller knows the broker has it.
func (p *Publisher) PublishTag(msg *services.TagMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal tag message: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish tag %s: %w", msg.TagID, err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("flush broker connection: %w", err)
	}
	p.logger.Info("Tag published",
		zap.String("subject", p.subject),
		zap.String("tag_id", msg.TagID),
	)
	return nil
}
