package mcd

import (
	"mcorder/internal/models"
)

const priceTypePickup = 2

// OrderPayload is the body shared by the totals and order initiation endpoints
type OrderPayload struct {
	UserName      string    `json:"userName"`
	LanguageName  string    `json:"languageName"`
	Platform      string    `json:"platform"`
	MarketID      string    `json:"marketId"`
	IsNormalOrder bool      `json:"isNormalOrder"`
	StoreID       string    `json:"storeId"`
	Application   string    `json:"application"`
	Options       []string  `json:"options"`
	OrderView     OrderView `json:"orderView"`
}

type OrderView struct {
	Market            string           `json:"Market"`
	LanguageName      string           `json:"LanguageName"`
	NickName          string           `json:"NickName"`
	StoreID           string           `json:"StoreID"`
	Products          []ProductLine    `json:"Products"`
	UserName          string           `json:"UserName"`
	PriceType         int              `json:"PriceType"`
	PromotionListView []PromotionBlock `json:"PromotionListView"`
	Payment           *PaymentBlock    `json:"Payment,omitempty"`
}

// ProductLine is one configurable product with a quantity
type ProductLine struct {
	Choices        []interface{}      `json:"Choices"`
	ProductCode    models.ProductCode `json:"ProductCode"`
	Customizations []interface{}      `json:"Customizations"`
	Quantity       int                `json:"Quantity"`
}

type PromotionBlock struct {
	ID          int               `json:"Id"`
	Type        int               `json:"Type"`
	ProductSets []PromotionSetRef `json:"ProductSets"`
}

// PromotionSetRef fills one product set of an offer with exactly one product
type PromotionSetRef struct {
	Alias    string        `json:"Alias"`
	Products []ProductLine `json:"Products"`
	Quantity int           `json:"Quantity"`
}

type PaymentBlock struct {
	POD                     int    `json:"POD"`
	OrderPaymentID          *int64 `json:"OrderPaymentId"`
	CustomerPaymentMethodID int64  `json:"CustomerPaymentMethodId"`
	PaymentDataID           int    `json:"PaymentDataId"`
	PaymentMethodID         int64  `json:"PaymentMethodId"`
}

// BuildOrderPayload converts an order into the submission shape. The payment block is
// only present when a card is given, price queries pass nil.
func (c *Client) BuildOrderPayload(storeID string, order models.Order, card *models.PaymentCard) OrderPayload {
	products := make([]ProductLine, 0, len(order.Normal))
	for _, item := range order.Normal {
		products = append(products, productLine(item.Code, item.Quantity))
	}

	promotions := make([]PromotionBlock, 0, len(order.Deals))
	for _, deal := range order.Deals {
		block := PromotionBlock{
			ID:          deal.OfferID,
			Type:        deal.DiscountType,
			ProductSets: make([]PromotionSetRef, 0, len(deal.Parts)),
		}
		for _, part := range deal.Parts {
			block.ProductSets = append(block.ProductSets, PromotionSetRef{
				Alias:    part.Alias,
				Products: []ProductLine{productLine(part.Code, 1)},
				Quantity: 1,
			})
		}
		promotions = append(promotions, block)
	}

	view := OrderView{
		Market:            c.cfg.Market,
		LanguageName:      c.cfg.Language,
		StoreID:           storeID,
		Products:          products,
		UserName:          c.username,
		PriceType:         priceTypePickup,
		PromotionListView: promotions,
	}
	if card != nil {
		view.Payment = &PaymentBlock{
			CustomerPaymentMethodID: card.CustomerPaymentMethodID,
			PaymentDataID:           -1,
			PaymentMethodID:         card.PaymentMethodID,
		}
	}

	return OrderPayload{
		UserName:     c.username,
		LanguageName: c.cfg.Language,
		Platform:     c.cfg.Platform,
		MarketID:     c.cfg.Market,
		StoreID:      storeID,
		Application:  c.cfg.Application,
		Options:      []string{"ApplyPromotion"},
		OrderView:    view,
	}
}

func productLine(code models.ProductCode, quantity int) ProductLine {
	return ProductLine{
		Choices:        []interface{}{},
		ProductCode:    code,
		Customizations: []interface{}{},
		Quantity:       quantity,
	}
}
