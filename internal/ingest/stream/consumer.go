// Package stream consumes pollutant observations from Kafka topics
// published by upstream measurement collectors.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/airindex/airindex/internal/aqi"
	"github.com/airindex/airindex/internal/ingest"
)

// Config holds Kafka consumer settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Handler processes one decoded observation. Returning an error leaves the
// message uncommitted so it is retried after a rebalance or restart.
type Handler func(ctx context.Context, obs *ingest.Observation) error

// MessageFetcher abstracts the subset of kafka.Reader the consumer needs.
type MessageFetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads observation messages from a topic and hands complete,
// validated observations to a handler.
type Consumer struct {
	reader  MessageFetcher
	topic   string
	handler Handler
	logger  zerolog.Logger
}

// NewConsumer creates a consumer backed by a kafka.Reader.
func NewConsumer(cfg Config, handler Handler, logger zerolog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("topic must not be empty")
	}
	if handler == nil {
		return nil, errors.New("handler must not be nil")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return &Consumer{
		reader:  reader,
		topic:   cfg.Topic,
		handler: handler,
		logger:  logger.With().Str("component", "stream").Str("topic", cfg.Topic).Logger(),
	}, nil
}

// NewConsumerWithReader creates a consumer around an existing fetcher.
// Used in tests and when the caller manages reader lifecycle itself.
func NewConsumerWithReader(reader MessageFetcher, topic string, handler Handler, logger zerolog.Logger) *Consumer {
	return &Consumer{
		reader:  reader,
		topic:   topic,
		handler: handler,
		logger:  logger.With().Str("component", "stream").Str("topic", topic).Logger(),
	}
}

// Run consumes messages until the context is cancelled. Fetch errors back
// off and retry; malformed or unprocessable messages are logged and
// committed so a poison message cannot wedge the partition.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error().Err(err).Msg("failed to close kafka reader")
		}
	}()

	c.logger.Info().Msg("observation consumer started")

	backoff := time.Second
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info().Msg("observation consumer stopped")
				return nil
			}
			c.logger.Error().Err(err).Msg("fetch failed")
			select {
			case <-time.After(backoff):
				if backoff < 10*time.Second {
					backoff *= 2
				}
				continue
			case <-ctx.Done():
				c.logger.Info().Msg("observation consumer stopped")
				return nil
			}
		}
		backoff = time.Second

		obs, err := DecodeObservation(msg.Value)
		if err != nil {
			c.logger.Warn().
				Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("discarding malformed observation message")
			c.commit(ctx, msg)
			continue
		}

		if err := c.handler(ctx, obs); err != nil {
			// Invalid readings and coordinates never become valid on retry;
			// commit them like any other poison message so the partition
			// cannot wedge on redelivery.
			if errors.Is(err, aqi.ErrInvalidReading) || errors.Is(err, ingest.ErrInvalidCoordinates) {
				c.logger.Warn().
					Err(err).
					Int64("offset", msg.Offset).
					Float64("lat", obs.Lat).
					Float64("lon", obs.Lon).
					Msg("discarding unprocessable observation")
				c.commit(ctx, msg)
				continue
			}
			c.logger.Error().
				Err(err).
				Int64("offset", msg.Offset).
				Float64("lat", obs.Lat).
				Float64("lon", obs.Lon).
				Msg("handler failed, leaving message uncommitted")
			continue
		}

		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("commit failed")
	}
}

// observationMessage is the wire format for observation topics.
type observationMessage struct {
	Lat        float64     `json:"lat"`
	Lon        float64     `json:"lon"`
	Reading    aqi.Reading `json:"reading"`
	MeasuredAt time.Time   `json:"measured_at"`
	Source     string      `json:"source"`
}

// DecodeObservation parses and validates one observation message payload.
func DecodeObservation(payload []byte) (*ingest.Observation, error) {
	var msg observationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("decode observation: %w", err)
	}

	if !ingest.ValidCoordinates(msg.Lat, msg.Lon) {
		return nil, fmt.Errorf("%w: lat=%f lon=%f", ingest.ErrInvalidCoordinates, msg.Lat, msg.Lon)
	}

	source := msg.Source
	if source == "" {
		source = "stream"
	}

	return &ingest.Observation{
		Lat:        msg.Lat,
		Lon:        msg.Lon,
		Reading:    msg.Reading,
		MeasuredAt: msg.MeasuredAt,
		FetchedAt:  time.Now(),
		Source:     source,
	}, nil
}
