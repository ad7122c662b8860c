// ===============================
// FILE: cmd/nfc-producer/main.go
// ===============================

// nfc-producer forwards scanned tags to the broker. It reads one scan
// per line from stdin as "tag_id,user_name,user_email", which is the
// format the desk reader emits.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/ingest"
	"taskmaster/internal/services"

	"go.uber.org/zap"
)

func main() {
	tagID := flag.String("tag", "", "publish a single tag id and exit")
	userName := flag.String("name", "", "user name for -tag")
	userEmail := flag.String("email", "", "user email for -tag")
	flag.Parse()

	logger, err := initLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	conn, err := ingest.Connect(ctx, &cfg.Broker, logger)
	cancel()
	if err != nil {
		logger.Fatal("Failed to connect to broker", zap.Error(err))
	}
	defer ingest.Drain(conn, cfg.Server.GracefulTimeout, logger)

	publisher := ingest.NewPublisher(conn, cfg.Broker.Subject, logger)

	if *tagID != "" {
		msg := &services.TagMessage{TagID: *tagID, UserName: *userName, UserEmail: *userEmail}
		if err := publisher.PublishTag(msg); err != nil {
			logger.Fatal("Failed to publish tag", zap.Error(err))
		}
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			logger.Warn("Skipping malformed scan line", zap.String("line", line))
			continue
		}
		msg := &services.TagMessage{
			TagID:     strings.TrimSpace(parts[0]),
			UserName:  strings.TrimSpace(parts[1]),
			UserEmail: strings.TrimSpace(parts[2]),
		}
		if err := publisher.PublishTag(msg); err != nil {
			logger.Error("Failed to publish tag", zap.String("tag_id", msg.TagID), zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal("Failed to read stdin", zap.Error(err))
	}
}

func initLogger() (*zap.Logger, error) {
	var config zap.Config
	if os.Getenv("GO_ENV") == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
