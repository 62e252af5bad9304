package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PickupMessage is published after a pickup has been confirmed
type PickupMessage struct {
	OrderNumber  string          `json:"order_number"`
	Username     string          `json:"username"`
	StoreID      string          `json:"store_id"`
	StoreAddress string          `json:"store_address"`
	CheckInCode  string          `json:"check_in_code"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"item_count"`
	DealCount    int             `json:"deal_count"`
	Timestamp    time.Time       `json:"timestamp"`
}

// NewPickupMessage creates a PickupMessage from a picked up order session
func NewPickupMessage(session *OrderSession, username string) *PickupMessage {
	items := 0
	for _, item := range session.Food.Normal {
		items += item.Quantity
	}

	return &PickupMessage{
		OrderNumber:  session.OrderNumber,
		Username:     username,
		StoreID:      session.Store.ID,
		StoreAddress: session.Store.Address,
		CheckInCode:  session.CheckInCode,
		Total:        session.Total,
		ItemCount:    items,
		DealCount:    len(session.Food.Deals),
		Timestamp:    time.Now().UTC(),
	}
}
