package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderState represents the checkout stage of an order session
type OrderState string

const (
	StatePriced    OrderState = "priced"
	StateInitiated OrderState = "initiated"
	StateConfirmed OrderState = "confirmed"
	StatePickedUp  OrderState = "picked_up"
)

// NormalItem is a regular menu product with a quantity
type NormalItem struct {
	Code     ProductCode `json:"code"`
	Quantity int         `json:"quantity"`
}

// PromotionPart is the product chosen for one product set of an offer
type PromotionPart struct {
	Code  ProductCode `json:"code"`
	Alias string      `json:"alias"`
}

// Promotion is a resolved offer: one part per product set, in offer order
type Promotion struct {
	OfferID      int             `json:"offer_id"`
	DiscountType int             `json:"discount_type"`
	Parts        []PromotionPart `json:"parts"`
}

// Order is the food selection, normal items and deals kept as separate sequences
type Order struct {
	Normal []NormalItem `json:"normal"`
	Deals  []Promotion  `json:"deals"`
}

// IsEmpty reports whether nothing has been picked
func (o Order) IsEmpty() bool {
	return len(o.Normal) == 0 && len(o.Deals) == 0
}

// PaymentCard identifies a payment method stored on the customer profile.
// The identifiers are passed through to the order endpoints untouched.
type PaymentCard struct {
	PaymentMethodID         int64  `json:"PaymentMethodId"`
	CustomerPaymentMethodID int64  `json:"CustomerPaymentMethodId"`
	NickName                string `json:"NickName,omitempty"`
}

// OrderSession is the active order threaded through pricing, submission and pickup
type OrderSession struct {
	Store       Store           `json:"store"`
	Food        Order           `json:"food"`
	Total       decimal.Decimal `json:"total"`
	CheckInCode string          `json:"check_in_code,omitempty"`
	PaymentID   int64           `json:"payment_id,omitempty"`
	Card        *PaymentCard    `json:"card,omitempty"`
	OrderNumber string          `json:"order_number,omitempty"`
	State       OrderState      `json:"state"`
}

// ValidationError describes the first invalid field of an order
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the order can be turned into a submission payload
func (o Order) Validate() error {
	if o.IsEmpty() {
		return ValidationError{
			Field:   "order",
			Message: "order must contain at least one item or deal",
		}
	}

	for i, item := range o.Normal {
		if err := validateNormalItem(item, i); err != nil {
			return err
		}
	}

	for i, deal := range o.Deals {
		if err := validateDeal(deal, i); err != nil {
			return err
		}
	}

	return nil
}

func validateNormalItem(item NormalItem, index int) error {
	prefix := fmt.Sprintf("normal[%d]", index)

	if !item.Code.IsNumeric() {
		return ValidationError{
			Field:   prefix + ".code",
			Message: fmt.Sprintf("product code %q must be numeric", item.Code),
		}
	}

	if item.Quantity < 1 {
		return ValidationError{
			Field:   prefix + ".quantity",
			Message: "quantity must be at least 1",
		}
	}

	return nil
}

func validateDeal(deal Promotion, index int) error {
	prefix := fmt.Sprintf("deals[%d]", index)

	if len(deal.Parts) == 0 {
		return ValidationError{
			Field:   prefix + ".parts",
			Message: "promotion must have at least one part",
		}
	}

	for j, part := range deal.Parts {
		if !part.Code.IsNumeric() {
			return ValidationError{
				Field:   fmt.Sprintf("%s.parts[%d].code", prefix, j),
				Message: fmt.Sprintf("product code %q must be numeric", part.Code),
			}
		}
	}

	return nil
}
