package domain

// ExportRow is a single row in a trip's log export.
// It is a flat, denormalized view: one row per duty status, with the log
// sheet fields repeated for every status on that sheet. Sheets with no
// statuses yield one row with zero values for the status fields.
type ExportRow struct {
	TripID string
	Date   string // "2006-01-02"

	CarrierName      string
	StartingOdometer float64
	EndingOdometer   float64
	TotalMiles       float64

	Status    Status
	StartTime string // "HH:MM", empty when the sheet has no statuses
	EndTime   string
	Hours     float64
	Location  string
	Odometer  float64
	Remarks   string
}
