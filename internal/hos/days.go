package hos

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// DayLog is one calendar day of a timeline, padded to a full 24 hours.
type DayLog struct {
	Date          time.Time
	Statuses      []domain.DutyStatus
	StartOdometer float64
	EndOdometer   float64
}

// Miles returns the distance covered during the day.
func (d DayLog) Miles() float64 { return d.EndOdometer - d.StartOdometer }

// Hours sums the day's statuses matching any of the given statuses.
func (d DayLog) Hours(statuses ...domain.Status) float64 {
	var total float64
	for _, ds := range d.Statuses {
		for _, st := range statuses {
			if ds.Status == st {
				total += ds.DurationHours()
			}
		}
	}
	return total
}

// SplitDays cuts a contiguous or gapped timeline at midnight in the location
// of the first activity. Gaps, and the time before the first and after the
// last activity, are recorded as off duty. Boundaries are rounded to the
// minute, so each day's statuses cover exactly 00:00 to 24:00.
func SplitDays(activities []Activity) []DayLog {
	if len(activities) == 0 {
		return nil
	}
	loc := activities[0].Start.Location()
	first := midnight(activities[0].Start.In(loc))
	last := activities[len(activities)-1].End.In(loc)

	var days []DayLog
	odometer := activities[0].StartOdometer
	for dayStart := first; dayStart.Before(last); dayStart = dayStart.AddDate(0, 0, 1) {
		dayEnd := dayStart.AddDate(0, 0, 1)
		day := DayLog{Date: dayStart, StartOdometer: odometer}

		cursor := 0 // minutes covered so far
		addStatus := func(st domain.Status, from, to int, location string, odo float64, remarks string) {
			if to <= from {
				return
			}
			if n := len(day.Statuses); n > 0 {
				prev := &day.Statuses[n-1]
				if prev.Status == st && int(prev.EndTime) == from {
					prev.EndTime = domain.ClockTime(to)
					if remarks != "" && !strings.Contains(prev.Remarks, remarks) {
						prev.Remarks = joinRemarks(prev.Remarks, remarks)
					}
					cursor = to
					return
				}
			}
			day.Statuses = append(day.Statuses, domain.DutyStatus{
				Status:    st,
				StartTime: domain.ClockTime(from),
				EndTime:   domain.ClockTime(to),
				Location:  location,
				Odometer:  odo,
				Remarks:   remarks,
			})
			cursor = to
		}

		for _, a := range activities {
			if !a.End.After(dayStart) || !a.Start.Before(dayEnd) {
				continue
			}
			from := minuteOf(a.Start, dayStart)
			to := minuteOf(a.End, dayStart)
			startOdo := odometerAt(a, maxTime(a.Start, dayStart))
			endOdo := odometerAt(a, minTime(a.End, dayEnd))

			addStatus(domain.StatusOffDuty, cursor, from, day.lastLocation(a.Location), odometer, "")
			addStatus(a.Status, max(from, cursor), to, a.Location, startOdo, a.Note)
			odometer = max(odometer, endOdo)
		}
		addStatus(domain.StatusOffDuty, cursor, domain.MinutesPerDay, day.lastLocation(""), odometer, "")

		day.EndOdometer = odometer
		days = append(days, day)
	}
	return days
}

// LogSheet converts the day into a log sheet for tripID, with the day
// summary stored in LogData.
func (d DayLog) LogSheet(tripID uuid.UUID) domain.LogSheet {
	sheet := domain.LogSheet{
		TripID:           tripID,
		Date:             d.Date,
		TotalMiles:       round2(d.Miles()),
		StartingOdometer: round2(d.StartOdometer),
		EndingOdometer:   round2(d.EndOdometer),
		DutyStatuses:     d.Statuses,
	}
	sheet.LogData, _ = json.Marshal(d.summary())
	return sheet
}

type daySummary struct {
	Date         string            `json:"date"`
	Activities   []summaryActivity `json:"activities"`
	TotalDrive   float64           `json:"total_drive"`
	TotalOnDuty  float64           `json:"total_on_duty"`
	TotalOffDuty float64           `json:"total_off_duty"`
	TotalMiles   float64           `json:"total_miles"`
}

type summaryActivity struct {
	Status    domain.Status `json:"status"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Duration  float64       `json:"duration"`
	Location  string        `json:"location"`
	Remarks   string        `json:"remarks,omitempty"`
}

func (d DayLog) summary() daySummary {
	s := daySummary{
		Date:         d.Date.Format(time.DateOnly),
		Activities:   make([]summaryActivity, 0, len(d.Statuses)),
		TotalDrive:   round2(d.Hours(domain.StatusDriving)),
		TotalOnDuty:  round2(d.Hours(domain.StatusDriving, domain.StatusOnDuty)),
		TotalOffDuty: round2(d.Hours(domain.StatusOffDuty, domain.StatusSleeper)),
		TotalMiles:   round2(d.Miles()),
	}
	for _, ds := range d.Statuses {
		s.Activities = append(s.Activities, summaryActivity{
			Status:    ds.Status,
			StartTime: ds.StartTime.String(),
			EndTime:   ds.EndTime.String(),
			Duration:  round2(ds.DurationHours()),
			Location:  ds.Location,
			Remarks:   ds.Remarks,
		})
	}
	return s
}

func (d DayLog) lastLocation(fallback string) string {
	if n := len(d.Statuses); n > 0 {
		return strings.TrimPrefix(d.Statuses[n-1].Location, "en route to ")
	}
	return fallback
}

// minuteOf returns t as whole minutes after dayStart, clamped to the day.
func minuteOf(t, dayStart time.Time) int {
	m := int(math.Round(t.Sub(dayStart).Minutes()))
	return min(max(m, 0), domain.MinutesPerDay)
}

// odometerAt interpolates the odometer inside an activity.
func odometerAt(a Activity, t time.Time) float64 {
	total := a.Duration()
	if total <= 0 || a.EndOdometer == a.StartOdometer {
		return a.StartOdometer
	}
	frac := float64(t.Sub(a.Start)) / float64(total)
	return a.StartOdometer + (a.EndOdometer-a.StartOdometer)*frac
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func joinRemarks(a, b string) string {
	if a == "" {
		return b
	}
	return fmt.Sprintf("%s; %s", a, b)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
