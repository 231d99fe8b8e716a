package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is a driver duty status as drawn on a paper log grid.
type Status string

const (
	StatusOffDuty Status = "OFF"
	StatusSleeper Status = "SB"
	StatusDriving Status = "D"
	StatusOnDuty  Status = "ON"
)

// Statuses lists every status in grid row order (top to bottom).
var Statuses = []Status{StatusOffDuty, StatusSleeper, StatusDriving, StatusOnDuty}

// Valid reports whether s is one of the four duty statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOffDuty, StatusSleeper, StatusDriving, StatusOnDuty:
		return true
	}
	return false
}

// CountsOnDuty reports whether time in this status counts toward on-duty limits.
func (s Status) CountsOnDuty() bool {
	return s == StatusDriving || s == StatusOnDuty
}

// MinutesPerDay is the length of a log day.
const MinutesPerDay = 24 * 60

// ClockTime is a time of day in whole minutes since midnight.
// 1440 ("24:00") is allowed so a status can run to the end of the day.
type ClockTime int

// ParseClockTime parses "HH:MM" (00:00 through 24:00).
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: time %q is out of range", ErrValidation, s)
	}
	return ClockTime(h*60 + m), nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ClockTimeOf returns the time of day of t, truncated to the minute.
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// String formats c as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// DutyStatus is one status interval on a log sheet.
type DutyStatus struct {
	ID         uuid.UUID
	LogSheetID uuid.UUID
	Status     Status
	StartTime  ClockTime
	EndTime    ClockTime
	Location   string
	Odometer   float64
	Remarks    string
	CreatedAt  time.Time
}

// DurationHours returns the length of the interval in hours.
// An end time before the start time means the status crosses midnight.
func (d DutyStatus) DurationHours() float64 {
	start, end := int(d.StartTime), int(d.EndTime)
	if end < start {
		end += MinutesPerDay
	}
	return float64(end-start) / 60
}
