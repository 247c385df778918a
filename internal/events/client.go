package events

import (
	"context"
	"fmt"
	"time"

	"github.com/mtax/declaration-engine/internal/domain"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Publisher emits declaration events.
type Publisher interface {
	PublishDeclarationSaved(ctx context.Context, d *domain.Declaration) error
}

// publishChannel is the part of *amqp091.Channel the client needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Client publishes declaration events to a topic exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      publishChannel
	exchangeName string
	routingKey   string
	log          *zap.Logger
}

// NewClient dials the broker and declares the exchange.
func NewClient(url, exchangeName, routingKey string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		log:          log,
	}, nil
}

// PublishDeclarationSaved publishes a persistent declaration.saved message.
func (c *Client) PublishDeclarationSaved(ctx context.Context, d *domain.Declaration) error {
	msg := NewDeclarationSavedMessage(d)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			Type:         EventDeclarationSaved,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.log.Info("published declaration event",
		zap.Int64("declaration_id", d.ID),
		zap.Int64("taxpayer_id", d.TaxpayerID),
		zap.Int("year", d.Year),
		zap.String("exchange", c.exchangeName),
		zap.String("routing_key", c.routingKey))
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
