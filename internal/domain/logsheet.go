package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogSheet is a driver's daily record of duty status for one trip.
// There is at most one sheet per trip per date.
//
// LogData is an opaque JSON payload; generated sheets store the day summary
// (activities and totals) there so clients can render without re-deriving it.
type LogSheet struct {
	ID               uuid.UUID
	TripID           uuid.UUID
	Date             time.Time // midnight UTC of the log day
	TotalMiles       float64
	StartingOdometer float64
	EndingOdometer   float64
	CarrierName      string
	CarrierAddress   string
	DriverSignature  string
	Notes            string
	LogData          json.RawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DutyStatuses is populated by reads that load the sheet's statuses.
	DutyStatuses []DutyStatus
}

// TotalDrivingHours sums the sheet's driving statuses.
func (l LogSheet) TotalDrivingHours() float64 {
	var total float64
	for _, ds := range l.DutyStatuses {
		if ds.Status == StatusDriving {
			total += ds.DurationHours()
		}
	}
	return total
}

// TotalOnDutyHours sums driving and on-duty-not-driving statuses.
func (l LogSheet) TotalOnDutyHours() float64 {
	var total float64
	for _, ds := range l.DutyStatuses {
		if ds.Status.CountsOnDuty() {
			total += ds.DurationHours()
		}
	}
	return total
}
