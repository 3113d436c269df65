package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitConfig names the exchange, queue and routing key used for cleanup
// events. Publisher and consumer must agree on all three.
type RabbitConfig struct {
	URL        string
	Exchange   string
	Queue      string
	RoutingKey string
}

// DialRabbit opens a connection to the broker.
func DialRabbit(cfg RabbitConfig) (*amqp.Connection, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
	}
	return conn, nil
}

// declare sets up a durable direct exchange with one bound queue.
func declare(ch *amqp.Channel, cfg RabbitConfig) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declaring queue: %w", err)
	}
	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("binding queue: %w", err)
	}
	return nil
}

// RabbitPublisher publishes cleanup events as persistent JSON messages.
type RabbitPublisher struct {
	ch         *amqp.Channel
	exchange   string
	routingKey string

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// NewRabbitPublisher opens a channel on conn and declares the topology.
func NewRabbitPublisher(conn *amqp.Connection, cfg RabbitConfig) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	if err := declare(ch, cfg); err != nil {
		ch.Close()
		return nil, err
	}
	return &RabbitPublisher{ch: ch, exchange: cfg.Exchange, routingKey: cfg.RoutingKey}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev CleanupEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding cleanup event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Type:         DetailType,
		AppId:        Source,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing cleanup event: %w", err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

// RabbitConsumer feeds queued cleanup events to a handler with manual acks.
type RabbitConsumer struct {
	ch      *amqp.Channel
	queue   string
	handler Handler
}

// NewRabbitConsumer opens a channel on conn, declares the topology and
// limits unacknowledged deliveries to prefetch.
func NewRabbitConsumer(conn *amqp.Connection, cfg RabbitConfig, prefetch int, handler Handler) (*RabbitConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	if err := declare(ch, cfg); err != nil {
		ch.Close()
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("setting qos: %w", err)
	}
	return &RabbitConsumer{ch: ch, queue: cfg.Queue, handler: handler}, nil
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *RabbitConsumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("starting consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks handled events. Failures are requeued once; a second
// failure or an undecodable body is dropped.
func (c *RabbitConsumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var ev CleanupEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		slog.Error("discarding malformed cleanup event", "message_id", d.MessageId, "error", err)
		if err := d.Nack(false, false); err != nil {
			slog.Error("failed to nack delivery", "error", err)
		}
		return
	}

	if err := c.handler(ctx, ev); err != nil {
		requeue := !d.Redelivered
		slog.Error("cleanup event failed", "message_id", d.MessageId, "requeue", requeue, "error", err)
		if err := d.Nack(false, requeue); err != nil {
			slog.Error("failed to nack delivery", "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		slog.Error("failed to ack delivery", "error", err)
	}
}

func (c *RabbitConsumer) Close() error {
	return c.ch.Close()
}
