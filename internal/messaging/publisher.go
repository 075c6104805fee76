// Package messaging publishes created notifications to a RabbitMQ fanout
// exchange so that other processes (mailers, push gateways) can follow them.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"eventhub/internal/microservices/http-api/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Message is the wire form of a notification on the exchange.
type Message struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EventID    *string   `json:"eventId,omitempty"`
	EventTitle *string   `json:"eventTitle,omitempty"`
	Status     *string   `json:"status,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewMessage(n models.Notification) Message {
	return Message{
		ID:         n.ID,
		UserID:     n.UserID,
		Type:       n.Type,
		Title:      n.Title,
		Message:    n.Message,
		EventID:    n.EventID,
		EventTitle: n.EventTitle,
		Status:     n.Status,
		CreatedAt:  n.CreatedAt,
	}
}

// Publisher owns one connection and channel. A nil *Publisher drops every message.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      zerolog.Logger
}

func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open RabbitMQ channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	log.Info().Str("exchange", exchange).Msg("RabbitMQ publisher initialized")

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
		log:      log,
	}, nil
}

// PublishNotifications sends one persistent JSON message per notification,
// routed by notification type.
func (p *Publisher) PublishNotifications(ctx context.Context, notifications []models.Notification) error {
	if p == nil || p.channel == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, n := range notifications {
		body, err := json.Marshal(NewMessage(n))
		if err != nil {
			return fmt.Errorf("encode notification %s: %w", n.ID, err)
		}
		err = p.channel.PublishWithContext(ctx,
			p.exchange,
			n.Type,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    n.ID,
				Timestamp:    time.Now(),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish notification %s: %w", n.ID, err)
		}
	}

	p.log.Debug().Int("count", len(notifications)).Str("exchange", p.exchange).Msg("notifications published")
	return nil
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.log.Info().Msg("RabbitMQ connection closed")
}
