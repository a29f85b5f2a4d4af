package types

import "time"

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate returns ErrInvalidCoordinate when the position is outside
// [-90, 90] x [-180, 180] or not a number.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return ErrInvalidCoordinate
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return ErrInvalidCoordinate
	}
	return nil
}

// Facility is a physical place identified by a stable external place id.
// Facilities are created on first sighting and never updated or deleted.
type Facility struct {
	FacilityID string    `json:"facility_id"` // UUID v7, generated on creation.
	PlaceID    string    `json:"place_id"`
	Name       *string   `json:"name,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    *string   `json:"address,omitempty"`
	Rating     *float64  `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Coordinate returns the stored position of the facility.
func (f *Facility) Coordinate() Coordinate {
	return Coordinate{Latitude: f.Latitude, Longitude: f.Longitude}
}

// DisplayName returns the name or "Unknown" when the provider gave none.
func (f *Facility) DisplayName() string {
	if f.Name == nil || *f.Name == "" {
		return "Unknown"
	}
	return *f.Name
}
