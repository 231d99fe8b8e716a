package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopType classifies a planned stop.
type StopType string

const (
	StopRest StopType = "REST"
	StopFuel StopType = "FUEL"
	StopBoth StopType = "BOTH"
)

// Valid reports whether t is one of the known stop types.
func (t StopType) Valid() bool {
	switch t {
	case StopRest, StopFuel, StopBoth:
		return true
	}
	return false
}

// Coordinates is a point stored as {"lat": …, "lng": …}.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RestStop is a rest and/or fuel stop planned along a trip.
// Odometer is the trip distance in miles at which the stop is reached.
type RestStop struct {
	ID               uuid.UUID
	TripID           uuid.UUID
	Name             string
	Location         string
	Coordinates      *Coordinates // nil until a POI lookup fills it in
	Type             StopType
	Amenities        map[string]any
	Odometer         float64
	PlannedArrival   time.Time
	PlannedDeparture time.Time
}

// DurationHours returns the planned length of the stop in hours.
func (s RestStop) DurationHours() float64 {
	return s.PlannedDeparture.Sub(s.PlannedArrival).Hours()
}
