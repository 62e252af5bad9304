package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mcorder/internal/logger"
	"mcorder/internal/messaging"
	"mcorder/internal/models"
)

// Subscriber prints pickup events as they arrive
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
	out      io.Writer
}

func NewSubscriber(consumer *messaging.Consumer, logger *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   logger,
		out:      out,
	}
}

// Start consumes until the context is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Pickup subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handlePickup)
	if err != nil && ctx.Err() == nil {
		s.logger.Error("consumer_failed", "Pickup consumer failed", requestID, err, nil)
		return err
	}

	s.logger.Info("graceful_shutdown", "Pickup subscriber stopped", requestID, nil)
	return s.consumer.Close()
}

func (s *Subscriber) handlePickup(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var msg models.PickupMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Error("message_parsing_failed", "Failed to parse pickup message", requestID, err, nil)
		return fmt.Errorf("failed to parse pickup message: %v: %w", err, messaging.ErrDiscard)
	}

	if _, err := fmt.Fprintln(s.out, formatPickup(&msg)); err != nil {
		return fmt.Errorf("failed to display notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Pickup notification displayed", requestID, map[string]interface{}{
		"order_number": msg.OrderNumber,
		"store_id":     msg.StoreID,
		"username":     msg.Username,
	})

	return nil
}

// formatPickup renders a one line summary of a pickup
func formatPickup(msg *models.PickupMessage) string {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	contents := fmt.Sprintf("%d items", msg.ItemCount)
	if msg.ItemCount == 1 {
		contents = "1 item"
	}
	switch msg.DealCount {
	case 0:
	case 1:
		contents += " and 1 deal"
	default:
		contents += fmt.Sprintf(" and %d deals", msg.DealCount)
	}

	return fmt.Sprintf(
		"[%s] Order %s for %s is ready at %s (store %s): %s, total $%s. Check-in code %s.",
		timestamp,
		msg.OrderNumber,
		msg.Username,
		msg.StoreAddress,
		msg.StoreID,
		contents,
		msg.Total.StringFixed(2),
		msg.CheckInCode,
	)
}
