package types

import "time"

// Position is a geographic coordinate pair as it travels on the wire.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is a real point on the globe.
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// MapFocus is the coordinate the map view centers on. Derived, never persisted.
type MapFocus struct {
	Lat float64
	Lng float64
}

// City matches the remote cities collection structure. IDs are generated
// client-side at creation time (Unix milliseconds); the store may reassign
// them on create.
type City struct {
	ID       int64     `json:"id"`
	CityName string    `json:"cityName"`
	Country  string    `json:"country"`
	Emoji    string    `json:"emoji"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes"`
	Position Position  `json:"position"`
}

// Snapshot is the read-only view of the itinerary handed to observers.
// Cities preserves store arrival order with creations appended.
type Snapshot struct {
	Cities      []City `json:"cities"`
	CurrentCity *City  `json:"currentCity"`
	IsLoading   bool   `json:"isLoading"`
}

// Place is a resolved reverse-geocoding result.
type Place struct {
	CityName    string `json:"cityName"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	Emoji       string `json:"emoji"`
}
