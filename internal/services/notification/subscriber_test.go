package notification

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mcorder/internal/logger"
	"mcorder/internal/messaging"
	"mcorder/internal/models"
)

func TestFormatPickup(t *testing.T) {
	base := models.PickupMessage{
		OrderNumber:  "317",
		Username:     "customer@example.com",
		StoreID:      "1234",
		StoreAddress: "100 Market St, Philadelphia, PA 19104",
		CheckInCode:  "CHK42",
		Total:        decimal.RequireFromString("11.3"),
		Timestamp:    time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		items    int
		deals    int
		contains string
	}{
		{name: "single item", items: 1, contains: ": 1 item, total $11.30."},
		{name: "items and a deal", items: 3, deals: 1, contains: ": 3 items and 1 deal, total"},
		{name: "deals only", deals: 2, contains: ": 0 items and 2 deals, total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := base
			msg.ItemCount, msg.DealCount = tt.items, tt.deals

			got := formatPickup(&msg)
			if !strings.HasPrefix(got, "[2024-05-01 12:30:00] Order 317 for customer@example.com") {
				t.Errorf("unexpected prefix: %s", got)
			}
			if !strings.Contains(got, tt.contains) || !strings.HasSuffix(got, "Check-in code CHK42.") {
				t.Errorf("formatPickup() = %s, want it to contain %q", got, tt.contains)
			}
		})
	}
}

func TestHandlePickup(t *testing.T) {
	var out bytes.Buffer
	s := NewSubscriber(nil, logger.Discard(), &out)

	if err := s.handlePickup(context.Background(), []byte(`{"order_number":"42","total":"5.5","item_count":2}`)); err != nil {
		t.Fatalf("handlePickup() error = %v", err)
	}
	if !strings.Contains(out.String(), "Order 42") || !strings.Contains(out.String(), "$5.50") {
		t.Errorf("output = %q", out.String())
	}

	err := s.handlePickup(context.Background(), []byte(`not json`))
	if !errors.Is(err, messaging.ErrDiscard) {
		t.Errorf("handlePickup() on bad json = %v, want ErrDiscard", err)
	}
}
