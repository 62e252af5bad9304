package mcd

import (
	"context"
	"fmt"
	"strconv"

	"mcorder/internal/models"
)

// OfferScope narrows offers to a store or to a location. Coords win when both are set.
type OfferScope struct {
	Store  *models.Store
	Coords *models.Coordinates
}

type offersResponse struct {
	Data []models.Offer `json:"Data"`
}

// Offers lists the deals available to the signed-in customer
func (c *Client) Offers(ctx context.Context, scope OfferScope) ([]models.Offer, error) {
	if err := c.requireSignIn(); err != nil {
		return nil, err
	}

	params := c.appParams()
	params.Set("userName", c.username)
	switch {
	case scope.Coords != nil:
		params.Set("latitude", formatCoordinate(scope.Coords.Latitude))
		params.Set("longitude", formatCoordinate(scope.Coords.Longitude))
	case scope.Store != nil:
		params.Set("storeId", scope.Store.ID)
		params.Set("latitude", formatCoordinate(scope.Store.Coordinates.Latitude))
		params.Set("longitude", formatCoordinate(scope.Store.Coordinates.Longitude))
	}

	body, err := c.get(ctx, offersPath, params)
	if err != nil {
		return nil, fmt.Errorf("offers: %w", err)
	}
	var resp offersResponse
	if err := decodeResult(offersPath, body, &resp); err != nil {
		return nil, fmt.Errorf("offers: %w", err)
	}

	return resp.Data, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
