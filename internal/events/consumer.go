package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Handler processes one decoded workflow event.
type Handler func(ctx context.Context, event models.WorkflowEvent)

// Consumer reads workflow events through a Redis consumer group.
type Consumer struct {
	client       *redis.Client
	stream       string
	groupID      string
	consumerName string
	handle       Handler
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, stream, groupID, consumerName string, handle Handler, logger *zerolog.Logger) *Consumer {
	if stream == "" {
		stream = DefaultStream
	}
	return &Consumer{
		client:       client,
		stream:       stream,
		groupID:      groupID,
		consumerName: consumerName,
		handle:       handle,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    10,
			Block:    2 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("failed to read from stream")
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	event, err := decodeEvent(msg.Values)
	if err != nil {
		// undecodable messages are acked so they are not redelivered
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("skipping message")
		c.ack(ctx, msg.ID)
		return
	}

	c.handle(ctx, event)
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("failed to ACK message")
	}
}
