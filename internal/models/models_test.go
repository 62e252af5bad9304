package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestProductCode_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ProductCode
	}{
		{name: "number", in: `1001`, want: "1001"},
		{name: "string", in: `"1001"`, want: "1001"},
		{name: "composite", in: `"123-456"`, want: "123-456"},
		{name: "null", in: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ProductCode
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestProductCode_MarshalJSON(t *testing.T) {
	out, err := json.Marshal([]ProductCode{"1001", "123-456", "007"})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if got, want := string(out), `[1001,"123-456","007"]`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestProductCode_Base(t *testing.T) {
	base, ok := ProductCode("123-456").Base()
	if !ok || base != "123" {
		t.Errorf("Base() = %q, %v; want 123, true", base, ok)
	}
	if _, ok := ProductCode("123").Base(); ok {
		t.Errorf("plain code must not have a base")
	}
	if _, ok := ProductCode("-456").Base(); ok {
		t.Errorf("empty base must be rejected")
	}
}

func TestMenu_PutReplacesByName(t *testing.T) {
	var menu Menu
	menu.Category("Burgers").Put("Big Mac", "1")
	menu.Category("Burgers").Put("McDouble", "2")
	menu.Category("Burgers").Put("Big Mac", "3")

	burgers := menu.Category("Burgers")
	if len(menu.Categories) != 1 || len(burgers.Items) != 2 {
		t.Fatalf("unexpected menu: %+v", menu)
	}
	if burgers.Items[0].Code != "3" {
		t.Errorf("Big Mac code = %q, want 3", burgers.Items[0].Code)
	}
	if !menu.Contains("2") || menu.Contains("1") {
		t.Errorf("Contains mismatch: %+v", menu)
	}
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name:    "valid normal items",
			order:   Order{Normal: []NormalItem{{Code: "1001", Quantity: 2}}},
			wantErr: false,
		},
		{
			name:    "valid deal only",
			order:   Order{Deals: []Promotion{{OfferID: -5, Parts: []PromotionPart{{Code: "12"}}}}},
			wantErr: false,
		},
		{
			name:    "empty order",
			order:   Order{},
			wantErr: true,
		},
		{
			name:    "zero quantity",
			order:   Order{Normal: []NormalItem{{Code: "1001", Quantity: 0}}},
			wantErr: true,
		},
		{
			name:    "composite code",
			order:   Order{Normal: []NormalItem{{Code: "123-456", Quantity: 1}}},
			wantErr: true,
		},
		{
			name:    "deal without parts",
			order:   Order{Deals: []Promotion{{OfferID: -5}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var verr ValidationError
			if err != nil && !errors.As(err, &verr) {
				t.Errorf("Validate() error type = %T, want ValidationError", err)
			}
		})
	}
}

func TestNewPickupMessage(t *testing.T) {
	session := &OrderSession{
		Store:       Store{ID: "1234", Address: "1 Main St"},
		Food:        Order{Normal: []NormalItem{{Code: "1", Quantity: 2}, {Code: "2", Quantity: 1}}, Deals: []Promotion{{OfferID: -1}}},
		Total:       decimal.RequireFromString("7.49"),
		CheckInCode: "ABC",
		OrderNumber: "42",
		State:       StatePickedUp,
	}

	msg := NewPickupMessage(session, "me@example.com")
	if msg.ItemCount != 3 || msg.DealCount != 1 {
		t.Errorf("counts = %d/%d, want 3/1", msg.ItemCount, msg.DealCount)
	}
	if !msg.Total.Equal(session.Total) || msg.OrderNumber != "42" || msg.StoreID != "1234" {
		t.Errorf("unexpected message: %+v", msg)
	}
}
