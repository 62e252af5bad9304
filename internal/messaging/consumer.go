package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"mcorder/internal/logger"
)

// ErrDiscard marks handler errors that must not be redelivered
var ErrDiscard = errors.New("message discarded")

// MessageHandler processes one delivery body
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer reads deliveries from one queue
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming blocks until the context ends or the broker closes the channel
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	if c.conn.IsClosed() {
		return ErrConnectionClosed
	}

	err := c.conn.Channel().Qos(
		c.prefetch, // prefetch count
		0,          // prefetch size
		false,      // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.conn.Channel().Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consumer_started", fmt.Sprintf("Started consuming from queue %s", c.queueName), "", map[string]interface{}{
		"queue":    c.queueName,
		"consumer": c.consumerTag,
		"prefetch": c.prefetch,
	})

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queueName)
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

// processMessage acks handled deliveries, requeues failures and drops discarded ones
func (c *Consumer) processMessage(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	startTime := time.Now()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, delivery.Body)
	fields := map[string]interface{}{
		"queue":        c.queueName,
		"duration_ms":  time.Since(startTime).Milliseconds(),
		"delivery_tag": delivery.DeliveryTag,
	}

	if err != nil {
		requeue := !errors.Is(err, ErrDiscard) && !delivery.Redelivered
		fields["requeue"] = requeue
		c.logger.Error("message_processing_failed", "Failed to process message", "", err, fields)

		if nackErr := delivery.Nack(false, requeue); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
		return
	}

	c.logger.Debug("message_processed", "Successfully processed message", "", fields)
	if ackErr := delivery.Ack(false); ackErr != nil {
		c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, nil)
	}
}

// Close cancels the consumer and closes its connection
func (c *Consumer) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
		c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
	}
	return c.conn.Close()
}
