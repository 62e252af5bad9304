package journal

import (
	"context"
	"errors"
	"testing"

	"mcorder/internal/logger"
	"mcorder/internal/models"
)

func TestItemRows(t *testing.T) {
	order := models.Order{
		Normal: []models.NormalItem{{Code: "1001", Quantity: 2}},
		Deals: []models.Promotion{{
			OfferID: -7,
			Parts:   []models.PromotionPart{{Code: "3001", Alias: "Buy"}, {Code: "555"}},
		}},
	}

	rows := itemRows(order)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0].Code != "1001" || rows[0].Quantity != 2 || rows[0].OfferID != nil {
		t.Errorf("normal row = %+v", rows[0])
	}
	for _, row := range rows[1:] {
		if row.Quantity != 1 || row.OfferID == nil || *row.OfferID != -7 || row.Alias == nil {
			t.Errorf("promotion row = %+v", row)
		}
	}
	if *rows[1].Alias != "Buy" || rows[2].Code != "555" {
		t.Errorf("promotion rows out of order: %+v %+v", rows[1], rows[2])
	}
}

func TestRecord_RequiresPickedUp(t *testing.T) {
	s := NewService(nil, logger.Discard())

	err := s.Record(context.Background(), &models.OrderSession{State: models.StateConfirmed}, "me@example.com")
	if !errors.Is(err, ErrNotPickedUp) {
		t.Errorf("Record() error = %v, want ErrNotPickedUp", err)
	}
}
