package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"mcorder/internal/logger"
	"mcorder/internal/models"
)

var ErrConnectionClosed = errors.New("rabbitmq connection is closed")

// Publisher sends pickup events
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishPickup announces a completed pickup on the pickup exchange
func (p *Publisher) PublishPickup(ctx context.Context, msg *models.PickupMessage) error {
	if p.conn.IsClosed() {
		return ErrConnectionClosed
	}

	publishing, err := newPublishing(msg, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(
		ctx,
		PickupExchange, // exchange
		"",             // routing key
		false,          // mandatory
		false,          // immediate
		publishing,
	)
	if err != nil {
		p.logger.Error("message_publish_failed", "Failed to publish pickup event", "", err, map[string]interface{}{
			"exchange":     PickupExchange,
			"order_number": msg.OrderNumber,
		})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published", "Published pickup event", "", map[string]interface{}{
		"exchange":     PickupExchange,
		"order_number": msg.OrderNumber,
		"message_size": len(publishing.Body),
	})

	return nil
}

// newPublishing encodes a message as a persistent JSON delivery
func newPublishing(message interface{}, now time.Time) (amqp091.Publishing, error) {
	body, err := json.Marshal(message)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    now,
	}, nil
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
