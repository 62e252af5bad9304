package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/resty.v1"

	"mcorder/internal/logger"
	"mcorder/internal/models"
)

// demoAPIKey is the public key the geocoding service hands out for testing.
const demoAPIKey = "demo"

// ZipLookupError is returned when a zip code cannot be turned into coordinates
type ZipLookupError struct {
	Zip    string
	Reason string
	Err    error
}

func (e *ZipLookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("zip lookup %q: %s: %v", e.Zip, e.Reason, e.Err)
	}
	return fmt.Sprintf("zip lookup %q: %s", e.Zip, e.Reason)
}

func (e *ZipLookupError) Unwrap() error {
	return e.Err
}

type geocodeResponse struct {
	OutputGeocodes []struct {
		OutputGeocode struct {
			Latitude  json.Number `json:"Latitude"`
			Longitude json.Number `json:"Longitude"`
		} `json:"OutputGeocode"`
	} `json:"OutputGeocodes"`
}

// Geocoder resolves US zip codes through the Texas A&M geocoding web service
type Geocoder struct {
	client *resty.Client
	url    string
	logger *logger.Logger
}

// NewGeocoder creates a geocoder for the given service URL
func NewGeocoder(url string, timeout time.Duration, log *logger.Logger) *Geocoder {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Geocoder{
		client: client,
		url:    url,
		logger: log,
	}
}

// Lookup returns the coordinates of a zip code. The service answers (0,0) once it
// starts refusing a caller, so that coordinate is reported as an error.
func (g *Geocoder) Lookup(ctx context.Context, zip string) (models.Coordinates, error) {
	requestID := logger.GenerateRequestID()

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":  demoAPIKey,
			"format":  "json",
			"version": "4.01",
			"zip":     zip,
		}).
		Get(g.url)
	if err != nil {
		g.logger.Error("zip_lookup_failed", "Geocoding request failed", requestID, err, map[string]interface{}{
			"zip": zip,
		})
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "request failed", Err: err}
	}
	if resp.StatusCode() >= 400 {
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: fmt.Sprintf("geocoder returned status %d", resp.StatusCode())}
	}

	var body geocodeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "malformed geocoder response", Err: err}
	}
	if len(body.OutputGeocodes) == 0 {
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "no geocode returned"}
	}

	geocode := body.OutputGeocodes[0].OutputGeocode
	lat, err := strconv.ParseFloat(geocode.Latitude.String(), 64)
	if err != nil {
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "invalid latitude", Err: err}
	}
	lon, err := strconv.ParseFloat(geocode.Longitude.String(), 64)
	if err != nil {
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "invalid longitude", Err: err}
	}
	if lat == 0 && lon == 0 {
		g.logger.Warn("zip_lookup_banned", "Geocoder returned the (0,0) sentinel", requestID, map[string]interface{}{
			"zip": zip,
		})
		return models.Coordinates{}, &ZipLookupError{Zip: zip, Reason: "geocoder returned (0,0), the demo api key is probably banned for this address"}
	}

	g.logger.Debug("zip_lookup_completed", "Resolved zip code", requestID, map[string]interface{}{
		"zip":       zip,
		"latitude":  lat,
		"longitude": lon,
	})

	return models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
