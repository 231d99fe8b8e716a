package hos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// assertFullDay checks that statuses run contiguously from 00:00 to 24:00.
func assertFullDay(t *testing.T, day DayLog) {
	t.Helper()
	require.NotEmpty(t, day.Statuses)
	assert.Equal(t, domain.ClockTime(0), day.Statuses[0].StartTime)
	assert.Equal(t, domain.ClockTime(domain.MinutesPerDay), day.Statuses[len(day.Statuses)-1].EndTime)
	for i := 1; i < len(day.Statuses); i++ {
		assert.Equal(t, day.Statuses[i-1].EndTime, day.Statuses[i].StartTime, "gap on %s at %d", day.Date.Format(time.DateOnly), i)
	}
	assert.InDelta(t, 24.0, day.Hours(domain.Statuses...), 1e-9)
}

func TestSplitDays_SingleDayPadsWithOffDuty(t *testing.T) {
	sched, err := Plan(twoLegs(100, 2, 200, 4), 0, planStart, DefaultRules())
	require.NoError(t, err)

	days := SplitDays(sched.Activities)
	require.Len(t, days, 1)
	day := days[0]
	assertFullDay(t, day)

	assert.Equal(t, "2025-06-02", day.Date.Format(time.DateOnly))
	assert.Equal(t, domain.StatusOffDuty, day.Statuses[0].Status)
	assert.Equal(t, "08:00", day.Statuses[0].EndTime.String())
	assert.Equal(t, domain.StatusOffDuty, day.Statuses[len(day.Statuses)-1].Status)
	assert.Equal(t, "16:15", day.Statuses[len(day.Statuses)-1].StartTime.String())

	assert.InDelta(t, 6.0, day.Hours(domain.StatusDriving), 1e-9)
	assert.InDelta(t, 8.25, day.Hours(domain.StatusDriving, domain.StatusOnDuty), 1e-9)
	assert.InDelta(t, 300.0, day.Miles(), 1e-6)
}

func TestSplitDays_CrossesMidnight(t *testing.T) {
	start := time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC)
	acts := []Activity{
		{Status: domain.StatusDriving, Start: start, End: start.Add(6 * time.Hour), StartOdometer: 0, EndOdometer: 360, Location: "I-70"},
	}

	days := SplitDays(acts)
	require.Len(t, days, 2)
	for _, d := range days {
		assertFullDay(t, d)
	}

	assert.InDelta(t, 4.0, days[0].Hours(domain.StatusDriving), 1e-9)
	assert.InDelta(t, 2.0, days[1].Hours(domain.StatusDriving), 1e-9)
	assert.InDelta(t, 240.0, days[0].EndOdometer, 1e-6, "odometer interpolated at midnight")
	assert.InDelta(t, 240.0, days[1].StartOdometer, 1e-6)
	assert.InDelta(t, 360.0, days[1].EndOdometer, 1e-6)
	assert.Equal(t, "24:00", days[0].Statuses[len(days[0].Statuses)-1].EndTime.String())
}

func TestSplitDays_MultiDayPlan(t *testing.T) {
	sched, err := Plan(twoLegs(300, 5, 2500, 45), 0, planStart, DefaultRules())
	require.NoError(t, err)

	days := SplitDays(sched.Activities)
	require.Greater(t, len(days), 3)

	var driving float64
	for i, d := range days {
		assertFullDay(t, d)
		driving += d.Hours(domain.StatusDriving)
		if i > 0 {
			assert.Equal(t, days[i-1].Date.AddDate(0, 0, 1), d.Date)
			assert.InDelta(t, days[i-1].EndOdometer, d.StartOdometer, 1e-6)
		}
	}
	// Minute rounding can shift each boundary by up to 30 seconds.
	assert.InDelta(t, sched.DrivingHours(), driving, float64(len(sched.Activities))/60)
	assert.InDelta(t, 2800.0, days[len(days)-1].EndOdometer, 1e-6)
}

func TestSplitDays_Empty(t *testing.T) {
	assert.Nil(t, SplitDays(nil))
}

func TestDayLog_LogSheet(t *testing.T) {
	sched, err := Plan(twoLegs(100, 2, 200, 4), 0, planStart, DefaultRules())
	require.NoError(t, err)
	days := SplitDays(sched.Activities)
	require.Len(t, days, 1)

	tripID := uuid.New()
	sheet := days[0].LogSheet(tripID)

	assert.Equal(t, tripID, sheet.TripID)
	assert.InDelta(t, 300.0, sheet.TotalMiles, 1e-9)
	assert.InDelta(t, 6.0, sheet.TotalDrivingHours(), 1e-9)
	assert.Len(t, sheet.DutyStatuses, len(days[0].Statuses))

	var summary struct {
		Date         string  `json:"date"`
		TotalDrive   float64 `json:"total_drive"`
		TotalOnDuty  float64 `json:"total_on_duty"`
		TotalOffDuty float64 `json:"total_off_duty"`
		Activities   []struct {
			Status    string `json:"status"`
			StartTime string `json:"start_time"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(sheet.LogData, &summary))
	assert.Equal(t, "2025-06-02", summary.Date)
	assert.InDelta(t, 6.0, summary.TotalDrive, 1e-9)
	assert.InDelta(t, 8.25, summary.TotalOnDuty, 1e-9)
	assert.InDelta(t, 15.75, summary.TotalOffDuty, 1e-9)
	require.NotEmpty(t, summary.Activities)
	assert.Equal(t, "OFF", summary.Activities[0].Status)
	assert.Equal(t, "00:00", summary.Activities[0].StartTime)
}

func TestTimelineFromStops(t *testing.T) {
	trip := domain.Trip{CurrentLocation: "New York, NY", PickupLocation: "Chicago, IL"}
	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)

	t.Run("no stops", func(t *testing.T) {
		acts := TimelineFromStops(trip, start, nil, 15*time.Minute)
		require.Len(t, acts, 2)
		assert.Equal(t, domain.StatusOnDuty, acts[0].Status)
		assert.Equal(t, domain.StatusDriving, acts[1].Status)
		assert.Equal(t, start.Add(2*time.Hour), acts[1].End)
	})

	t.Run("rest and fuel", func(t *testing.T) {
		stops := []domain.RestStop{
			// Out of order on purpose.
			{Name: "Fuel Stop 1", Location: "Chicago, IL", Type: domain.StopFuel, Odometer: 790,
				PlannedArrival: start.Add(20 * time.Hour), PlannedDeparture: start.Add(21 * time.Hour)},
			{Name: "Rest Stop 1", Location: "Cleveland, OH", Type: domain.StopRest, Odometer: 460,
				PlannedArrival: start.Add(6 * time.Hour), PlannedDeparture: start.Add(16 * time.Hour)},
		}
		acts := TimelineFromStops(trip, start, stops, 15*time.Minute)

		// pre-trip, drive, rest, drive, fuel
		require.Len(t, acts, 5)
		statuses := make([]domain.Status, len(acts))
		for i, a := range acts {
			statuses[i] = a.Status
		}
		assert.Equal(t, []domain.Status{
			domain.StatusOnDuty, domain.StatusDriving, domain.StatusOffDuty, domain.StatusDriving, domain.StatusOnDuty,
		}, statuses)
		assert.InDelta(t, 460.0, acts[1].EndOdometer, 1e-9)
		assert.InDelta(t, 790.0, acts[3].EndOdometer, 1e-9)
		assert.Equal(t, start.Add(21*time.Hour), acts[4].End)

		for _, d := range SplitDays(acts) {
			assertFullDay(t, d)
		}
	})

	t.Run("overlapping stops are clipped", func(t *testing.T) {
		stops := []domain.RestStop{
			{Location: "A", Type: domain.StopRest, PlannedArrival: start.Add(time.Hour), PlannedDeparture: start.Add(11 * time.Hour)},
			{Location: "B", Type: domain.StopFuel, PlannedArrival: start.Add(10 * time.Hour), PlannedDeparture: start.Add(12 * time.Hour)},
		}
		acts := TimelineFromStops(trip, start, stops, 15*time.Minute)
		for i := 1; i < len(acts); i++ {
			assert.Equal(t, acts[i-1].End, acts[i].Start)
		}
		assert.Equal(t, start.Add(12*time.Hour), acts[len(acts)-1].End)
	})

	t.Run("start after first arrival", func(t *testing.T) {
		arrival := start.Add(-3 * time.Hour)
		stops := []domain.RestStop{
			{Location: "A", Type: domain.StopRest, PlannedArrival: arrival, PlannedDeparture: arrival.Add(10 * time.Hour)},
		}
		acts := TimelineFromStops(trip, start, stops, 15*time.Minute)
		require.Len(t, acts, 1)
		assert.Equal(t, domain.StatusOffDuty, acts[0].Status)
		assert.Equal(t, arrival, acts[0].Start)
		assert.Equal(t, arrival.Add(10*time.Hour), acts[0].End)
	})
}
