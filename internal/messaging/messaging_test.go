package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"mcorder/internal/logger"
	"mcorder/internal/models"
)

type recordingAcknowledger struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *recordingAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *recordingAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *recordingAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func TestNewPublishing(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := &models.PickupMessage{OrderNumber: "317", Total: decimal.RequireFromString("11.37")}

	publishing, err := newPublishing(msg, now)
	if err != nil {
		t.Fatalf("newPublishing() error = %v", err)
	}
	if publishing.ContentType != "application/json" || publishing.DeliveryMode != amqp091.Persistent || !publishing.Timestamp.Equal(now) {
		t.Errorf("unexpected publishing: %+v", publishing)
	}

	var decoded models.PickupMessage
	if err := json.Unmarshal(publishing.Body, &decoded); err != nil {
		t.Fatalf("body is not a pickup message: %v", err)
	}
	if decoded.OrderNumber != "317" || !decoded.Total.Equal(msg.Total) {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestProcessMessage(t *testing.T) {
	tests := []struct {
		name        string
		handlerErr  error
		redelivered bool
		wantAck     bool
		wantRequeue bool
	}{
		{name: "handled", wantAck: true},
		{name: "transient failure", handlerErr: errors.New("stdout closed"), wantRequeue: true},
		{name: "second failure", handlerErr: errors.New("stdout closed"), redelivered: true},
		{name: "discarded", handlerErr: fmt.Errorf("bad json: %w", ErrDiscard)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &recordingAcknowledger{}
			consumer := NewConsumer(nil, logger.Discard(), PickupQueue, "test", 1)
			delivery := amqp091.Delivery{Acknowledger: ack, DeliveryTag: 7, Redelivered: tt.redelivered, Body: []byte("{}")}

			consumer.processMessage(context.Background(), delivery, func(ctx context.Context, body []byte) error {
				return tt.handlerErr
			})

			if tt.wantAck {
				if len(ack.acked) != 1 || len(ack.nacked) != 0 {
					t.Errorf("acked %v nacked %v, want one ack", ack.acked, ack.nacked)
				}
				return
			}
			if len(ack.nacked) != 1 || ack.requeue[0] != tt.wantRequeue {
				t.Errorf("nacked %v requeue %v, want requeue %v", ack.nacked, ack.requeue, tt.wantRequeue)
			}
		})
	}
}
