// ===============================
// FILE: internal/ingest/conn.go
// ===============================

package ingest

import (
	"context"
	"fmt"
	"time"

	"taskmaster/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Connect dials the broker, retrying with exponential backoff until the
// context is cancelled or the retry budget runs out. Reconnects after a
// successful dial are handled by the client itself.
func Connect(ctx context.Context, cfg *config.BrokerConfig, logger *zap.Logger) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("Broker disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Broker reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("Broker connection closed")
		}),
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.ConnectBackoff
	policy.MaxElapsedTime = 0 // bounded by retry count, not wall time

	var conn *nats.Conn
	dial := func() error {
		var err error
		conn, err = nats.Connect(cfg.URL, opts...)
		if err != nil {
			logger.Warn("Broker dial failed", zap.String("url", cfg.URL), zap.Error(err))
		}
		return err
	}

	retries := uint64(cfg.ConnectRetries)
	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx)
	if err := backoff.Retry(dial, wrapped); err != nil {
		return nil, fmt.Errorf("connect to broker at %s: %w", cfg.URL, err)
	}

	logger.Info("Connected to broker",
		zap.String("url", cfg.URL),
		zap.Duration("reconnect_wait", cfg.ReconnectWait),
	)
	return conn, nil
}

// Drain flushes pending messages and closes the connection, bounded by
// the given timeout.
func Drain(conn *nats.Conn, timeout time.Duration, logger *zap.Logger) {
	if conn == nil || conn.IsClosed() {
		return
	}
	done := make(chan struct{})
	go func() {
		if err := conn.Drain(); err != nil {
			logger.Warn("Broker drain failed", zap.Error(err))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn("Broker drain timed out", zap.Duration("timeout", timeout))
		conn.Close()
	}
}
