package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// DefaultExchange is the fanout exchange order events are published to.
const DefaultExchange = "order_events"

const publishTimeout = 5 * time.Second

// Publisher is the subset of *amqp.Channel used to publish.
type Publisher interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher publishes events as persistent JSON messages.
type AMQPPublisher struct {
	ch       Publisher
	exchange string
	log      logrus.FieldLogger
	conn     *amqp.Connection
}

// NewAMQPPublisher declares the exchange on ch and returns a publisher.
func NewAMQPPublisher(ch Publisher, exchange string, log logrus.FieldLogger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, log: log}, nil
}

// DialAMQP connects to the broker and opens a publishing channel.
func DialAMQP(url, exchange string, log logrus.FieldLogger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewAMQPPublisher(ch, exchange, log)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func (p *AMQPPublisher) Notify(ctx context.Context, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{
			"order_id": e.OrderID,
			"type":     e.Type,
		}).Error("events: publish to broker")
	}
}

// Publish sends e with the event type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    e.OrderID.String() + ":" + e.Type + ":" + e.Status,
		Timestamp:    e.OccurredAt,
		Body:         body,
	})
}

// Close closes the broker connection opened by DialAMQP.
func (p *AMQPPublisher) Close() error {
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}
