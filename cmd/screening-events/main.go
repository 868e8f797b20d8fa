// Command screening-events consumes screening events from Kafka and writes
// an audit log line for each one.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/screening-service/internal/config"
	"github.com/SAP-F-2025/screening-service/internal/events"
	"github.com/SAP-F-2025/screening-service/internal/utils"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Event consumer stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := utils.NewLogger(cfg.Environment).Slog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub, err := cfg.Events.CreateSubscriber(logger)
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info("Consuming screening events",
		"brokers", cfg.Events.KafkaBrokers,
		"topic", cfg.Events.ScreeningTopic,
		"group", cfg.Events.ConsumerGroup)

	return events.NewConsumer(sub, cfg.Events.ScreeningTopic, logger).Run(ctx, audit(logger))
}

func audit(logger *slog.Logger) events.Handler {
	return func(ctx context.Context, e *events.Event) error {
		switch data := e.Data.(type) {
		case events.ScreeningCompletedEvent:
			logger.InfoContext(ctx, "Screening completed",
				"event_id", e.ID,
				"session_id", data.SessionID,
				"total", data.Total,
				"max_total", data.MaxTotal,
				"level", data.Level,
				"moves", data.Moves)
		case events.SessionStartedEvent:
			logger.InfoContext(ctx, "Screening started", "event_id", e.ID, "session_id", data.SessionID)
		default:
			logger.DebugContext(ctx, "Ignoring event", "event_id", e.ID, "event_type", e.Type)
		}
		return nil
	}
}
