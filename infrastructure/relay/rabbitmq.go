package relay

import (
	"context"
	"fmt"
	"log"

	"github.com/rabbitmq/amqp091-go"
)

const exchangeName = "fulfillment.events"

// Publisher is the broker side of the relay, narrowed so tests can inject a
// fake.
type Publisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// RabbitMQ publishes relayed events to a topic exchange; the routing key is
// the event type, so external consumers bind per type.
type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	url     string
}

// NewRabbitMQ prepares a client for the given broker URL.
func NewRabbitMQ(url string) *RabbitMQ {
	return &RabbitMQ{url: url}
}

// Connect establishes the connection and declares the exchange.
func (r *RabbitMQ) Connect() error {
	conn, err := amqp091.Dial(r.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	r.conn = conn
	r.channel = ch
	log.Println("✅ Connected to RabbitMQ")
	return nil
}

// Publish sends one event as a persistent JSON message.
func (r *RabbitMQ) Publish(ctx context.Context, eventType string, body []byte) error {
	if r.channel == nil {
		return fmt.Errorf("RabbitMQ channel not initialized")
	}

	err := r.channel.PublishWithContext(ctx,
		exchangeName, // exchange
		eventType,    // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	return nil
}

// Close releases the channel and connection.
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
