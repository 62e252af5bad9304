package models

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Store is a restaurant as returned by a location search
type Store struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	Phone       string      `json:"phone"`
	// Distance in miles from the search point. Informational only, the server applies the radius.
	Distance float64 `json:"distance"`
}
