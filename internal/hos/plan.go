package hos

import (
	"errors"
	"fmt"
	"time"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// Activity is one contiguous interval of a single duty status.
type Activity struct {
	Status        domain.Status
	Start         time.Time
	End           time.Time
	StartOdometer float64
	EndOdometer   float64
	Location      string
	Note          string
}

// Duration returns the length of the activity.
func (a Activity) Duration() time.Duration { return a.End.Sub(a.Start) }

// Leg is one drive between named waypoints. Service is on-duty time spent at
// To once the leg is driven (pickup or dropoff).
type Leg struct {
	From        string
	To          string
	Miles       float64
	Duration    time.Duration
	Service     time.Duration
	ServiceNote string
}

// Schedule is the output of Plan.
type Schedule struct {
	Activities []Activity
	Stops      []domain.RestStop
	Miles      float64
	Start      time.Time
	End        time.Time
}

// DrivingHours sums the driving activities.
func (s Schedule) DrivingHours() float64 { return s.hoursIn(domain.StatusDriving) }

// OnDutyHours sums driving and on-duty activities.
func (s Schedule) OnDutyHours() float64 {
	return s.hoursIn(domain.StatusDriving) + s.hoursIn(domain.StatusOnDuty)
}

func (s Schedule) hoursIn(st domain.Status) float64 {
	var d time.Duration
	for _, a := range s.Activities {
		if a.Status == st {
			d += a.Duration()
		}
	}
	return d.Hours()
}

// LegsFromRoute builds the two trip legs (current → pickup, pickup → dropoff)
// with the pickup and dropoff service times from rules.
func LegsFromRoute(trip domain.Trip, route domain.Route, rules Rules) ([]Leg, error) {
	if len(route.Legs) != 2 {
		return nil, fmt.Errorf("%w: route must have 2 legs, got %d", domain.ErrValidation, len(route.Legs))
	}
	return []Leg{
		{
			From:        trip.CurrentLocation,
			To:          trip.PickupLocation,
			Miles:       route.Legs[0].Miles(),
			Duration:    time.Duration(route.Legs[0].DurationSeconds * float64(time.Second)),
			Service:     rules.Pickup,
			ServiceNote: "Pickup",
		},
		{
			From:        trip.PickupLocation,
			To:          trip.DropoffLocation,
			Miles:       route.Legs[1].Miles(),
			Duration:    time.Duration(route.Legs[1].DurationSeconds * float64(time.Second)),
			Service:     rules.Dropoff,
			ServiceNote: "Dropoff",
		},
	}, nil
}

// ErrNoProgress is returned when the simulation stops advancing, which only
// happens for rule sets that slip past Validate.
var ErrNoProgress = errors.New("hos: schedule made no progress")

const (
	mileEpsilon = 1e-6
	timeEpsilon = time.Second
	maxSteps    = 100_000
)

// Plan simulates driving legs from start with cycleUsed hours already on the
// driver's cycle and returns the resulting timeline and stops.
func Plan(legs []Leg, cycleUsed time.Duration, start time.Time, rules Rules) (Schedule, error) {
	if err := rules.Validate(); err != nil {
		return Schedule{}, err
	}
	if cycleUsed < 0 {
		return Schedule{}, fmt.Errorf("%w: cycle hours must not be negative", domain.ErrValidation)
	}
	for _, l := range legs {
		if l.Miles < 0 || l.Duration < 0 {
			return Schedule{}, fmt.Errorf("%w: leg to %s has negative distance or duration", domain.ErrValidation, l.To)
		}
		if l.Miles > mileEpsilon && l.Duration <= 0 {
			return Schedule{}, fmt.Errorf("%w: leg to %s has distance but no duration", domain.ErrValidation, l.To)
		}
	}

	s := &sim{rules: rules, now: start, cycleUsed: cycleUsed}
	if len(legs) > 0 {
		s.location = legs[0].From
	}

	if s.cycleLeft() <= timeEpsilon {
		s.offDuty(rules.Restart, true)
	}

	for _, leg := range legs {
		if err := s.drive(leg); err != nil {
			return Schedule{}, err
		}
		s.location = leg.To
		if leg.Service > 0 {
			s.onDuty(leg.Service, leg.ServiceNote)
		}
	}

	return Schedule{
		Activities: s.activities,
		Stops:      s.stops,
		Miles:      s.odometer,
		Start:      start,
		End:        s.now,
	}, nil
}

// sim is the mutable state of one Plan run.
type sim struct {
	rules Rules

	now      time.Time
	odometer float64
	location string

	inShift      bool
	shiftStart   time.Time
	drivenShift  time.Duration
	cycleUsed    time.Duration
	milesOnTank  float64

	activities []Activity
	stops      []domain.RestStop
	restCount  int
	fuelCount  int
}

func (s *sim) driveLeft() time.Duration { return s.rules.MaxDriving - s.drivenShift }

func (s *sim) windowLeft() time.Duration {
	if !s.inShift {
		return s.rules.MaxOnDutyWindow
	}
	return s.rules.MaxOnDutyWindow - s.now.Sub(s.shiftStart)
}

func (s *sim) cycleLeft() time.Duration { return s.rules.MaxCycle - s.cycleUsed }

func (s *sim) drive(leg Leg) error {
	remaining := leg.Miles
	if remaining <= mileEpsilon {
		return nil
	}
	mph := leg.Miles / leg.Duration.Hours()

	for step := 0; remaining > mileEpsilon; step++ {
		if step > maxSteps {
			return ErrNoProgress
		}
		if !s.inShift {
			s.startShift()
			continue
		}

		budget := min(s.driveLeft(), s.windowLeft(), s.cycleLeft())
		if budget <= timeEpsilon {
			s.rest(0)
			continue
		}

		toFuel := s.rules.FuelIntervalMiles - s.milesOnTank
		if toFuel <= mileEpsilon {
			s.fuel(budget.Hours() * mph)
			continue
		}

		miles := min(remaining, toFuel, budget.Hours()*mph)
		d := time.Duration(miles / mph * float64(time.Hour))
		s.push(domain.StatusDriving, d, miles, "en route to "+leg.To, "Driving")
		s.drivenShift += d
		s.cycleUsed += d
		s.milesOnTank += miles
		remaining -= miles
	}
	return nil
}

// startShift begins a shift with the pre-trip inspection, restarting the
// cycle first if even the inspection would not fit.
func (s *sim) startShift() {
	if s.cycleLeft() < s.rules.PreTrip+timeEpsilon {
		s.offDuty(s.rules.Restart, true)
	}
	s.inShift = true
	s.shiftStart = s.now
	s.drivenShift = 0
	s.push(domain.StatusOnDuty, s.rules.PreTrip, 0, s.location, "Pre-trip inspection")
	s.cycleUsed += s.rules.PreTrip
}

// onDuty records non-driving work, resting first when the window or cycle
// cannot absorb it.
func (s *sim) onDuty(d time.Duration, note string) {
	if !s.inShift {
		s.startShift()
	}
	if s.windowLeft() < d || s.cycleLeft() < d {
		s.rest(d)
		s.startShift()
	}
	s.push(domain.StatusOnDuty, d, 0, s.location, note)
	s.cycleUsed += d
}

// rest ends the shift. The daily rest is used unless the cycle could not
// cover the next pre-trip plus need, in which case the cycle is restarted.
func (s *sim) rest(need time.Duration) {
	s.offDuty(s.rules.RequiredRest, s.cycleLeft() < s.rules.PreTrip+need+timeEpsilon)
}

// offDuty inserts an off-duty stop. Fuel due within MergeMiles is taken
// during the stop, which then becomes a BOTH stop.
func (s *sim) offDuty(d time.Duration, restart bool) {
	note := "Required rest"
	if restart {
		d = s.rules.Restart
		note = "34-hour restart"
	}
	arrival := s.now
	s.push(domain.StatusOffDuty, d, 0, s.location, note)

	stopType := domain.StopRest
	if s.odometer > mileEpsilon && s.rules.FuelIntervalMiles-s.milesOnTank <= s.rules.MergeMiles {
		stopType = domain.StopBoth
		s.milesOnTank = 0
	}
	s.restCount++
	s.stops = append(s.stops, domain.RestStop{
		Name:             stopName(stopType, s.restCount),
		Location:         s.stopLocation(),
		Type:             stopType,
		Odometer:         s.odometer,
		PlannedArrival:   arrival,
		PlannedDeparture: s.now,
	})

	s.inShift = false
	s.drivenShift = 0
	if restart {
		s.cycleUsed = 0
	}
}

// fuel takes a fuel stop that is due now. When the shift could cover no more
// than MergeMiles anyway, or cannot fit the stop, the rest is taken here
// instead and absorbs the fuel.
func (s *sim) fuel(milesLeftInShift float64) {
	if milesLeftInShift <= s.rules.MergeMiles || s.windowLeft() < s.rules.FuelStop || s.cycleLeft() < s.rules.FuelStop {
		s.rest(0)
		return
	}

	arrival := s.now
	s.push(domain.StatusOnDuty, s.rules.FuelStop, 0, s.location, "Fuel")
	s.cycleUsed += s.rules.FuelStop
	s.milesOnTank = 0
	s.fuelCount++
	s.stops = append(s.stops, domain.RestStop{
		Name:             stopName(domain.StopFuel, s.fuelCount),
		Location:         s.stopLocation(),
		Type:             domain.StopFuel,
		Odometer:         s.odometer,
		PlannedArrival:   arrival,
		PlannedDeparture: s.now,
	})
}

// push appends an activity of length d covering miles and advances the clock.
func (s *sim) push(status domain.Status, d time.Duration, miles float64, location, note string) {
	if d <= 0 {
		return
	}
	end := s.now.Add(d)
	// Contiguous statuses of the same kind and note extend the previous activity.
	if n := len(s.activities); n > 0 {
		prev := &s.activities[n-1]
		if prev.Status == status && prev.Note == note && prev.Location == location && prev.End.Equal(s.now) {
			prev.End = end
			prev.EndOdometer += miles
			s.now = end
			s.odometer += miles
			return
		}
	}
	s.activities = append(s.activities, Activity{
		Status:        status,
		Start:         s.now,
		End:           end,
		StartOdometer: s.odometer,
		EndOdometer:   s.odometer + miles,
		Location:      location,
		Note:          note,
	})
	s.now = end
	s.odometer += miles
}

func (s *sim) stopLocation() string {
	if s.odometer <= mileEpsilon {
		return s.location
	}
	return fmt.Sprintf("Mile %.0f", s.odometer)
}

func stopName(t domain.StopType, n int) string {
	switch t {
	case domain.StopFuel:
		return fmt.Sprintf("Fuel Stop %d", n)
	case domain.StopBoth:
		return fmt.Sprintf("Rest & Fuel Stop %d", n)
	}
	return fmt.Sprintf("Rest Stop %d", n)
}
