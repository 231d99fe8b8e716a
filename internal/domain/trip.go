// Package domain contains the core data types for the HaulTrackr API.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (repo, service, hos, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Trip is a single haul: the driver's current position, where the load is
// picked up, and where it is delivered. A trip is the top-level aggregate;
// rest stops and log sheets belong to it.
type Trip struct {
	ID     uuid.UUID
	UserID uuid.UUID

	CurrentLocation string
	PickupLocation  string
	DropoffLocation string

	// CurrentCycleHours is the on-duty time already used in the driver's
	// rolling 70-hour/8-day cycle when the trip starts.
	CurrentCycleHours float64

	// PlannedStart is the departure time of the last stored plan, nil until
	// the trip is planned.
	PlannedStart *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
