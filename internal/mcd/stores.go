package mcd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"mcorder/internal/geo"
	"mcorder/internal/models"
)

// DefaultRadiusMiles is the search radius used when none is given
const DefaultRadiusMiles = 8

// LookupZip resolves a zip code to coordinates. An empty zip uses the account zip
// code, which needs a signed-in session.
func (c *Client) LookupZip(ctx context.Context, zip string) (models.Coordinates, error) {
	if zip == "" {
		if !c.SignedIn() {
			return models.Coordinates{}, &geo.ZipLookupError{
				Reason: "supply a zip code or sign in to use the account zip code",
				Err:    ErrNotAuthenticated,
			}
		}
		zip = c.zipCode
	}
	return c.geocoder.Lookup(ctx, zip)
}

type storeQuery struct {
	GeneralStoreStatusCode string           `json:"generalStoreStatusCode"`
	Market                 string           `json:"market"`
	StoreAttributes        []string         `json:"storeAttributes"`
	PageSize               int              `json:"pageSize"`
	Local                  string           `json:"local"`
	LocationCriteria       locationCriteria `json:"locationCriteria"`
}

type locationCriteria struct {
	Distance  string `json:"distance"`
	Longitude string `json:"longitude"`
	Latitude  string `json:"latitude"`
}

type storeResponse struct {
	GeneralStatus struct {
		Status string `json:"status"`
	} `json:"generalStatus"`
	Address struct {
		AddressLine1 string `json:"addressLine1"`
		CityTown     string `json:"cityTown"`
		Subdivision  string `json:"subdivision"`
		PostalZip    string `json:"postalZip"`
		Location     struct {
			Lat json.Number `json:"lat"`
			Lon json.Number `json:"lon"`
		} `json:"location"`
	} `json:"address"`
	Identifiers struct {
		StoreIdentifier []struct {
			IdentifierType  string `json:"identifierType"`
			IdentifierValue string `json:"identifierValue"`
		} `json:"storeIdentifier"`
	} `json:"identifiers"`
	StoreNumbers struct {
		PhoneNumber []struct {
			Number string `json:"number"`
		} `json:"phonenumber"`
	} `json:"storeNumbers"`
}

// FindStores returns open stores around a point. The server applies the radius,
// Distance on each store is computed locally for display.
func (c *Client) FindStores(ctx context.Context, from models.Coordinates, radiusMiles int) ([]models.Store, error) {
	if err := c.requireSignIn(); err != nil {
		return nil, err
	}
	if radiusMiles <= 0 {
		radiusMiles = DefaultRadiusMiles
	}

	query, err := json.Marshal(storeQuery{
		GeneralStoreStatusCode: "OPEN",
		Market:                 c.cfg.Market,
		StoreAttributes:        []string{},
		PageSize:               25,
		Local:                  c.cfg.Language,
		LocationCriteria: locationCriteria{
			Distance:  strconv.Itoa(radiusMiles),
			Longitude: formatCoordinate(from.Longitude),
			Latitude:  formatCoordinate(from.Latitude),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode store query: %w", err)
	}

	body, err := c.get(ctx, storesPath, url.Values{
		"filter": {"search"},
		"query":  {string(query)},
	})
	if err != nil {
		return nil, fmt.Errorf("find stores: %w", err)
	}

	var results []storeResponse
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", storesPath, err)
	}

	stores := make([]models.Store, 0, len(results))
	for _, result := range results {
		store, err := parseStore(result)
		if err != nil {
			return nil, fmt.Errorf("find stores: %w", err)
		}
		store.Distance = geo.Distance(from, store.Coordinates)
		stores = append(stores, store)
	}

	return stores, nil
}

func parseStore(r storeResponse) (models.Store, error) {
	lat, err := strconv.ParseFloat(r.Address.Location.Lat.String(), 64)
	if err != nil {
		return models.Store{}, fmt.Errorf("invalid store latitude %q: %w", r.Address.Location.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Address.Location.Lon.String(), 64)
	if err != nil {
		return models.Store{}, fmt.Errorf("invalid store longitude %q: %w", r.Address.Location.Lon, err)
	}

	store := models.Store{
		Status: r.GeneralStatus.Status,
		Address: fmt.Sprintf("%s, %s, %s %s",
			r.Address.AddressLine1, r.Address.CityTown, r.Address.Subdivision, r.Address.PostalZip),
		Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
	}

	// the second identifier is the POS store number the order endpoints want
	ids := r.Identifiers.StoreIdentifier
	switch {
	case len(ids) > 1:
		store.ID = ids[1].IdentifierValue
	case len(ids) == 1:
		store.ID = ids[0].IdentifierValue
	}
	if len(r.StoreNumbers.PhoneNumber) > 0 {
		store.Phone = r.StoreNumbers.PhoneNumber[0].Number
	}

	return store, nil
}
