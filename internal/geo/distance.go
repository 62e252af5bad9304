package geo

import (
	"math"

	"mcorder/internal/models"
)

// EarthRadiusMiles is the mean Earth radius used for store distances.
const EarthRadiusMiles = 3959.0

// Distance returns the great-circle distance in miles between two points (haversine).
func Distance(from, to models.Coordinates) float64 {
	dLat := radians(to.Latitude - from.Latitude)
	dLon := radians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(from.Latitude))*math.Cos(radians(to.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
