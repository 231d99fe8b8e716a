package domain

import "encoding/json"

// MetersPerMile converts routing distances to miles.
const MetersPerMile = 1609.34

// Coordinate is a geographic point in routing-service order.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RouteLeg is one leg of a route between two waypoints.
type RouteLeg struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        json.RawMessage
}

// Miles returns the leg length in miles.
func (l RouteLeg) Miles() float64 { return l.DistanceMeters / MetersPerMile }

// Hours returns the leg driving time in hours.
func (l RouteLeg) Hours() float64 { return l.DurationSeconds / 3600 }

// Route is the current → pickup → dropoff route of a trip.
// DurationSeconds includes the one-hour pickup allowance added by the router.
type Route struct {
	Origin          Coordinate
	Pickup          Coordinate
	Dropoff         Coordinate
	DistanceMeters  float64
	DurationSeconds float64
	Legs            []RouteLeg
}

// Miles returns the total route length in miles.
func (r Route) Miles() float64 { return r.DistanceMeters / MetersPerMile }

// Hours returns the total route duration in hours.
func (r Route) Hours() float64 { return r.DurationSeconds / 3600 }

// Plan is the full result of planning a trip.
type Plan struct {
	Trip  Trip
	Route Route
	Stops []RestStop
	Logs  []LogSheet
}
