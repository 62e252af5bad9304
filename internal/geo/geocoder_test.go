package geo

import (
	"context"
	"errors"
	"testing"
	"time"

	"mcorder/internal/apitest"
	"mcorder/internal/logger"
)

func TestGeocoder_Lookup(t *testing.T) {
	srv := apitest.New(apitest.DefaultFixtures())
	defer srv.Close()

	g := NewGeocoder(srv.GeocoderURL(), 5*time.Second, logger.Discard())
	coords, err := g.Lookup(context.Background(), "19104")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if coords.Latitude != 40.0 || coords.Longitude != -75.0 {
		t.Errorf("Lookup() = %+v, want (40,-75)", coords)
	}

	query := srv.Query("/geocode")
	if query.Get("apikey") != "demo" || query.Get("version") != "4.01" || query.Get("zip") != "19104" {
		t.Errorf("unexpected geocoder query: %v", query)
	}
}

func TestGeocoder_SentinelIsBan(t *testing.T) {
	srv := apitest.New(apitest.DefaultFixtures())
	defer srv.Close()
	srv.Update(func(f *apitest.Fixtures) {
		f.Latitude, f.Longitude = "0", "0"
	})

	g := NewGeocoder(srv.GeocoderURL(), 5*time.Second, logger.Discard())
	_, err := g.Lookup(context.Background(), "19104")

	var zipErr *ZipLookupError
	if !errors.As(err, &zipErr) {
		t.Fatalf("Lookup() error = %v, want *ZipLookupError", err)
	}
	if zipErr.Zip != "19104" {
		t.Errorf("ZipLookupError.Zip = %q", zipErr.Zip)
	}
}
