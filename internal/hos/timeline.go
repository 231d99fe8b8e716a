package hos

import (
	"sort"
	"time"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// Fallback used when a trip has no stored stops: a pre-trip inspection
// followed by a short drive, so a log can still be produced.
const (
	noStopsPreTrip = 15 * time.Minute
	noStopsDrive   = 105 * time.Minute
)

// TimelineFromStops rebuilds a timeline from stored stops. The driver is on
// duty for the pre-trip inspection at start, drives between stops, is off
// duty at REST and BOTH stops and on duty at FUEL stops. Stops that begin
// before the previous one ended are clipped, and a start later than the
// first arrival is moved back to it.
func TimelineFromStops(trip domain.Trip, start time.Time, stops []domain.RestStop, preTrip time.Duration) []Activity {
	if len(stops) == 0 {
		return []Activity{
			{Status: domain.StatusOnDuty, Start: start, End: start.Add(noStopsPreTrip), Location: trip.CurrentLocation, Note: "Pre-trip inspection"},
			{Status: domain.StatusDriving, Start: start.Add(noStopsPreTrip), End: start.Add(noStopsPreTrip + noStopsDrive),
				Location: "en route to " + trip.PickupLocation, Note: "Driving"},
		}
	}

	sorted := make([]domain.RestStop, len(stops))
	copy(sorted, stops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlannedArrival.Before(sorted[j].PlannedArrival)
	})

	if first := sorted[0].PlannedArrival; start.After(first) {
		start = first
	}

	var (
		out      []Activity
		now      = start
		odometer float64
		location = trip.CurrentLocation
	)
	add := func(a Activity) {
		if a.End.After(a.Start) {
			out = append(out, a)
			now = a.End
		}
	}

	if preTrip > 0 && sorted[0].PlannedArrival.Sub(start) > preTrip {
		add(Activity{Status: domain.StatusOnDuty, Start: now, End: now.Add(preTrip),
			StartOdometer: 0, EndOdometer: 0, Location: location, Note: "Pre-trip inspection"})
	}

	for _, st := range sorted {
		arrival := st.PlannedArrival
		if arrival.Before(now) {
			arrival = now
		}
		stopOdo := max(st.Odometer, odometer)
		add(Activity{Status: domain.StatusDriving, Start: now, End: arrival,
			StartOdometer: odometer, EndOdometer: stopOdo, Location: "en route to " + st.Location, Note: "Driving"})
		odometer = stopOdo
		location = st.Location

		status, note := domain.StatusOffDuty, "Rest"
		if st.Type == domain.StopFuel {
			status, note = domain.StatusOnDuty, "Fuel"
		} else if st.Type == domain.StopBoth {
			note = "Rest & fuel"
		}
		departure := st.PlannedDeparture
		if departure.Before(now) {
			departure = now
		}
		add(Activity{Status: status, Start: now, End: departure,
			StartOdometer: odometer, EndOdometer: odometer, Location: location, Note: note})
	}
	return out
}
