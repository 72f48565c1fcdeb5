package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Sink receives events forwarded off the in-process bus.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher writes events as JSON to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
}

func DialAMQP(url string, queue string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("amqp url is required")
	}
	if strings.TrimSpace(queue) == "" {
		return nil, errors.New("amqp queue is required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Type:         string(e.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

// Relay forwards every bus event to sink until ctx is cancelled. Delivery is
// best effort: failed publishes are logged and skipped.
func Relay(ctx context.Context, bus Bus, sink Sink) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := sink.Publish(publishCtx, e); err != nil {
				slog.Warn("event relay publish failed", "event_type", e.Type, "event_id", e.ID, "error", err)
			}
			cancel()
		}
	}
}
