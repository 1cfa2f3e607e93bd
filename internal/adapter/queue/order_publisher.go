package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

const (
	OrderConfirmedQueue = "order.confirmed"

	dialTimeout = 5 * time.Second
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(url string) (channel, func() error, error)

// OrderPublisher sends OrderConfirmed events to a durable queue. Each publish
// opens its own connection, so a broker outage never leaves a broken
// connection behind.
type OrderPublisher struct {
	url    string
	queue  string
	dial   dialFunc
	logger *slog.Logger
}

func NewOrderPublisher(url string, logger *slog.Logger) *OrderPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &OrderPublisher{
		url:    url,
		queue:  OrderConfirmedQueue,
		dial:   dialAMQP,
		logger: logger,
	}
}

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	return ch, conn.Close, nil
}

func (p *OrderPublisher) PublishOrderConfirmed(ctx context.Context, event domain.OrderConfirmed) error {
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		p.logger.Warn("order event not published", "order_hash", event.OrderHash, "error", err)
		return err
	}
	defer func() { _ = closeConn() }()
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare failed: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.MessageID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish failed: %w", err)
	}

	p.logger.Info("order event published", "queue", p.queue, "order_hash", event.OrderHash, "message_id", event.MessageID)
	return nil
}
