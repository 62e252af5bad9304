package mcd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"mcorder/internal/logger"
	"mcorder/internal/models"
)

type profileResponse struct {
	Data struct {
		PaymentCard []models.PaymentCard `json:"PaymentCard"`
	} `json:"Data"`
}

type totalResponse struct {
	Data struct {
		OrderView struct {
			TotalValue decimal.Decimal `json:"TotalValue"`
		} `json:"OrderView"`
	} `json:"Data"`
}

type initiateResponse struct {
	OrderView struct {
		OrderPaymentID int64           `json:"OrderPaymentId"`
		TotalValue     decimal.Decimal `json:"TotalValue"`
		CheckInCode    string          `json:"CheckInCode"`
	} `json:"OrderView"`
}

type confirmRequest struct {
	MarketID       string `json:"marketId"`
	LanguageName   string `json:"languageName"`
	POSStoreNumber string `json:"POSStoreNumber"`
	Application    string `json:"application"`
	Platform       string `json:"platform"`
}

type orderPayment struct {
	PaymentMethodID         int64 `json:"PaymentMethodId"`
	OrderPaymentID          int64 `json:"OrderPaymentId"`
	CustomerPaymentMethodID int64 `json:"CustomerPaymentMethodId"`
	POD                     int   `json:"POD"`
}

type unattendedRequest struct {
	OrderPayment       orderPayment  `json:"OrderPayment"`
	LanguageName       string        `json:"languageName"`
	Platform           string        `json:"platform"`
	MarketID           string        `json:"marketId"`
	POSStoreNumber     string        `json:"POSStoreNumber"`
	AdditionalPayments []interface{} `json:"AdditionalPayments"`
	PriceType          int           `json:"PriceType"`
	CheckInData        string        `json:"checkInData"`
	Application        string        `json:"application"`
}

type unattendedResponse struct {
	OrderNumber json.RawMessage `json:"OrderNumber"`
}

// Cards returns the payment methods stored on the customer profile
func (c *Client) Cards(ctx context.Context) ([]models.PaymentCard, error) {
	if err := c.requireSignIn(); err != nil {
		return nil, err
	}

	params := c.appParams()
	params.Set("userName", c.username)

	body, err := c.get(ctx, profilePath, params)
	if err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}
	var resp profileResponse
	if err := decodeResult(profilePath, body, &resp); err != nil {
		return nil, fmt.Errorf("cards: %w", err)
	}

	return resp.Data.PaymentCard, nil
}

// Price asks the server for the total of an order and starts a session in the Priced state
func (c *Client) Price(ctx context.Context, store models.Store, order models.Order) (*models.OrderSession, error) {
	if err := c.requireSignIn(); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("invalid order: %w", err)
	}

	body, err := c.post(ctx, orderTotalPath, c.BuildOrderPayload(store.ID, order, nil))
	if err != nil {
		return nil, fmt.Errorf("price order: %w", err)
	}
	var resp totalResponse
	if err := decodeResult(orderTotalPath, body, &resp); err != nil {
		return nil, fmt.Errorf("price order: %w", err)
	}

	session := &models.OrderSession{
		Store: store,
		Food:  order,
		Total: resp.Data.OrderView.TotalValue,
		State: models.StatePriced,
	}

	c.logger.Info("order_priced", "Order priced", "", map[string]interface{}{
		"store_id": store.ID,
		"total":    session.Total.String(),
		"items":    len(order.Normal),
		"deals":    len(order.Deals),
	})

	return session, nil
}

// Submit places a priced order with the given card and moves the session to Initiated.
// The card is not charged until ConfirmPickup completes.
func (c *Client) Submit(ctx context.Context, session *models.OrderSession, card models.PaymentCard) error {
	if err := c.requireSignIn(); err != nil {
		return err
	}
	if session == nil || session.State != models.StatePriced {
		return fmt.Errorf("submit order: %w", ErrInvalidState)
	}

	body, err := c.post(ctx, orderInitialPath, c.BuildOrderPayload(session.Store.ID, session.Food, &card))
	if err != nil {
		return fmt.Errorf("submit order: %w", err)
	}
	var resp initiateResponse
	if err := decodeResult(orderInitialPath, body, &resp); err != nil {
		return fmt.Errorf("submit order: %w", err)
	}
	if resp.OrderView.CheckInCode == "" {
		return fmt.Errorf("submit order: %s returned no check-in code", orderInitialPath)
	}

	session.Card = &card
	session.CheckInCode = resp.OrderView.CheckInCode
	session.PaymentID = resp.OrderView.OrderPaymentID
	session.Total = resp.OrderView.TotalValue
	session.State = models.StateInitiated

	c.logger.Info("order_submitted", "Order initiated", "", map[string]interface{}{
		"store_id":      session.Store.ID,
		"check_in_code": session.CheckInCode,
		"total":         session.Total.String(),
	})

	return nil
}

// ConfirmPickup releases the order to the store and returns its order number. This
// charges the card. A session left in Confirmed by an earlier failure resumes at the
// final step.
func (c *Client) ConfirmPickup(ctx context.Context, session *models.OrderSession) (string, error) {
	if err := c.requireSignIn(); err != nil {
		return "", err
	}
	if session == nil || session.Card == nil ||
		(session.State != models.StateInitiated && session.State != models.StateConfirmed) {
		return "", fmt.Errorf("confirm pickup: %w", ErrInvalidState)
	}

	code := url.PathEscape(session.CheckInCode)
	requestID := logger.GenerateRequestID()

	if session.State == models.StateInitiated {
		if err := c.prefetchPickup(ctx, code); err != nil {
			return "", err
		}

		endpoint := orderInitialPath + "/" + code
		body, err := c.post(ctx, endpoint, confirmRequest{
			MarketID:       c.cfg.Market,
			LanguageName:   c.cfg.Language,
			POSStoreNumber: session.Store.ID,
			Application:    c.cfg.Application,
			Platform:       c.cfg.Platform,
		})
		if err != nil {
			return "", fmt.Errorf("confirm pickup: %w", err)
		}
		if err := decodeResult(endpoint, body, nil); err != nil {
			return "", fmt.Errorf("confirm pickup: %w", err)
		}
		session.State = models.StateConfirmed

		c.logger.Debug("pickup_confirmed", "Initial pickup confirmation accepted", requestID, map[string]interface{}{
			"check_in_code": session.CheckInCode,
		})
	}

	if err := c.prefetchPickup(ctx, code); err != nil {
		return "", err
	}

	endpoint := orderInitialPath + "/" + code + "/unattended"
	body, err := c.post(ctx, endpoint, unattendedRequest{
		OrderPayment: orderPayment{
			PaymentMethodID:         session.Card.PaymentMethodID,
			OrderPaymentID:          session.PaymentID,
			CustomerPaymentMethodID: session.Card.CustomerPaymentMethodID,
		},
		LanguageName:       c.cfg.Language,
		Platform:           c.cfg.Platform,
		MarketID:           c.cfg.Market,
		POSStoreNumber:     session.Store.ID,
		AdditionalPayments: []interface{}{},
		PriceType:          priceTypePickup,
		CheckInData:        "0",
		Application:        c.cfg.Application,
	})
	if err != nil {
		return "", fmt.Errorf("finish pickup: %w", err)
	}
	var resp unattendedResponse
	if err := decodeResult(endpoint, body, &resp); err != nil {
		return "", fmt.Errorf("finish pickup: %w", err)
	}

	session.OrderNumber = rawString(resp.OrderNumber)
	session.State = models.StatePickedUp

	c.logger.Info("order_picked_up", "Order released for pickup", requestID, map[string]interface{}{
		"store_id":     session.Store.ID,
		"order_number": session.OrderNumber,
	})

	return session.OrderNumber, nil
}

// prefetchPickup reads the pickup status. The app always does this before each
// confirmation step; only the call itself matters, the body is ignored.
func (c *Client) prefetchPickup(ctx context.Context, code string) error {
	if _, err := c.get(ctx, orderPickupPath+code, c.appParams()); err != nil {
		return fmt.Errorf("pickup status: %w", err)
	}
	return nil
}

// rawString returns a JSON string's value, or the literal text of any other value
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if string(raw) == "null" {
		return ""
	}
	return string(raw)
}
