package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/events"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/povarna/generative-ai-agents/proposal-agent/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	logger := log.Logger

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()
	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required")
	}

	client, err := setup.ConnectRedis(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer client.Close()

	hostname, _ := os.Hostname()
	consumer := events.NewConsumer(client, cfg.EventsStream, getEnv("EVENTS_GROUP", "audit"), hostname, logEvent(&logger), &logger)
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create consumer group")
	}

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Consumer stopped")
	}
	log.Info().Msg("Consumer stopped")
}

func logEvent(logger *zerolog.Logger) events.Handler {
	return func(_ context.Context, event models.WorkflowEvent) {
		logger.Info().
			Str("event_id", event.ID).
			Str("request_id", event.RequestID).
			Str("intent", event.Intent).
			Str("agent", event.Agent).
			Bool("blocked", event.Blocked).
			Str("file_id", event.FileID).
			Str("index_status", string(event.IndexStatus)).
			Str("error", event.Error).
			Time("created_at", event.CreatedAt).
			Msg("workflow event")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
