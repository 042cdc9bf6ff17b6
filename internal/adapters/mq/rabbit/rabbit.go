// Package rabbit publishes completion events to RabbitMQ.
package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AVSAkash/interview-assistant/internal/adapters/mq/queue"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

// DefaultQueue receives completion events when no queue is configured.
const DefaultQueue = "interview.completed"

// Config holds the broker connection settings.
type Config struct {
	URL   string
	Queue string
	// Expiration is the per-message TTL in milliseconds; empty keeps messages.
	Expiration string
}

// Publisher declares a durable queue and publishes JSON encoded events to it.
// It dials per publish: completions are rare and this keeps no broker state.
type Publisher struct {
	cfg    Config
	dial   func(url string) (*amqp.Connection, error)
	logger logger.Logger
}

// NewPublisher returns a Publisher for cfg.
func NewPublisher(cfg Config, l logger.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if l == nil {
		l = logger.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultQueue
	}
	return &Publisher{cfg: cfg, dial: amqp.Dial, logger: l}, nil
}

// Name implements worker.Sink.
func (p *Publisher) Name() string { return "rabbitmq" }

// Publish implements worker.Sink.
func (p *Publisher) Publish(ctx context.Context, e queue.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	q, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", p.cfg.Queue, err)
	}

	err = ch.PublishWithContext(ctx, "", q.Name, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.RecordID,
		Timestamp:    e.Date,
		Expiration:   p.cfg.Expiration,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", q.Name, err)
	}
	p.logger.Info(ctx, "completion event sent", logger.String("queue", q.Name), logger.String("record_id", e.RecordID))
	return nil
}

// LogSink stands in for the broker when none is configured.
type LogSink struct {
	logger logger.Logger
}

// NewLogSink returns a sink that only logs events.
func NewLogSink(l logger.Logger) *LogSink {
	if l == nil {
		l = logger.NewNop()
	}
	return &LogSink{logger: l}
}

// Name implements worker.Sink.
func (s *LogSink) Name() string { return "log" }

// Publish implements worker.Sink.
func (s *LogSink) Publish(ctx context.Context, e queue.Event) error {
	if e.RecordID == "" {
		return errors.New("completion event without record id")
	}
	s.logger.Info(ctx, "interview completed",
		logger.String("record_id", e.RecordID),
		logger.String("name", e.Name),
		logger.Int("final_score", e.FinalScore),
		logger.String("band", string(e.Band)))
	return nil
}
