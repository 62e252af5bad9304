package messaging

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"mcorder/internal/config"
	"mcorder/internal/logger"
)

const (
	// PickupExchange fans pickup events out to every bound queue
	PickupExchange = "pickup_fanout"
	// PickupQueue is the queue the notify mode reads from
	PickupQueue = "pickup_notifications_queue"
)

// Connection wraps a RabbitMQ connection and its single channel
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
}

// New dials RabbitMQ once and declares the pickup topology
func New(cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn, err := amqp091.Dial(cfg.RabbitMQURL())
	if err != nil {
		log.Error("rabbitmq_connection_failed", "Failed to connect to RabbitMQ", "startup", err, map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
			"port": cfg.RabbitMQ.Port,
		})
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	c := &Connection{
		conn:    conn,
		channel: channel,
		logger:  log,
	}
	if err := c.setupTopology(); err != nil {
		log.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", err, nil)
		c.Close()
		return nil, err
	}

	return c, nil
}

// setupTopology declares the pickup exchange and the notification queue bound to it
func (c *Connection) setupTopology() error {
	err := c.channel.ExchangeDeclare(
		PickupExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", PickupExchange, err)
	}

	_, err = c.channel.QueueDeclare(
		PickupQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		amqp091.Table{
			"x-message-ttl": int32(24 * 60 * 60 * 1000), // a day
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s queue: %w", PickupQueue, err)
	}

	err = c.channel.QueueBind(
		PickupQueue,    // queue name
		"",             // routing key (ignored for fanout)
		PickupExchange, // exchange
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind %s queue: %w", PickupQueue, err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	return c.channel
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

func (c *Connection) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
