package geo

import (
	"math"
	"testing"

	"mcorder/internal/models"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		from models.Coordinates
		to   models.Coordinates
		want float64
	}{
		{
			name: "nearby store",
			from: models.Coordinates{Latitude: 40.0, Longitude: -75.0},
			to:   models.Coordinates{Latitude: 40.1, Longitude: -75.1},
			want: 8.7018,
		},
		{
			name: "new york to los angeles",
			from: models.Coordinates{Latitude: 40.7128, Longitude: -74.0060},
			to:   models.Coordinates{Latitude: 34.0522, Longitude: -118.2437},
			want: 2445.71,
		},
		{
			name: "same point",
			from: models.Coordinates{Latitude: 40.0, Longitude: -75.0},
			to:   models.Coordinates{Latitude: 40.0, Longitude: -75.0},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.from, tt.to)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	points := []models.Coordinates{
		{Latitude: 40.0, Longitude: -75.0},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 0, Longitude: 179.9},
		{Latitude: 0, Longitude: -179.9},
	}

	for _, a := range points {
		if d := Distance(a, a); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", a, a, d)
		}
		for _, b := range points {
			if ab, ba := Distance(a, b), Distance(b, a); math.Abs(ab-ba) > 1e-9 {
				t.Errorf("Distance not symmetric for %v %v: %v vs %v", a, b, ab, ba)
			}
		}
	}
}
