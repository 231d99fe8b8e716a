// Package hos turns a route into an hours-of-service compliant schedule.
//
// The engine is a pure simulation: Plan walks the route in drive chunks,
// each bounded by the remaining drive time, on-duty window, cycle budget,
// fuel interval and the next waypoint, and inserts rest, restart, fuel,
// pickup and dropoff activities as those limits bind. SplitDays then cuts
// the resulting timeline into 24-hour log days.
package hos

import (
	"fmt"
	"time"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// Rules holds the thresholds the schedule is built against.
type Rules struct {
	MaxDriving        time.Duration // per shift
	MaxOnDutyWindow   time.Duration // elapsed time from shift start
	RequiredRest      time.Duration // off duty between shifts
	MaxCycle          time.Duration // on-duty hours before a restart
	Restart           time.Duration // off duty that resets the cycle
	FuelIntervalMiles float64
	FuelStop          time.Duration
	Pickup            time.Duration
	Dropoff           time.Duration
	PreTrip           time.Duration
	MergeMiles        float64 // a fuel stop this close to a rest is taken during the rest
}

// DefaultRules returns the property-carrying driver limits the planner uses
// unless configured otherwise.
func DefaultRules() Rules {
	return Rules{
		MaxDriving:        11 * time.Hour,
		MaxOnDutyWindow:   14 * time.Hour,
		RequiredRest:      10 * time.Hour,
		MaxCycle:          70 * time.Hour,
		Restart:           34 * time.Hour,
		FuelIntervalMiles: 1000,
		FuelStop:          30 * time.Minute,
		Pickup:            time.Hour,
		Dropoff:           time.Hour,
		PreTrip:           15 * time.Minute,
		MergeMiles:        50,
	}
}

// Hours converts fractional hours to a Duration.
func Hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// Validate rejects rule sets under which a shift could never make progress.
func (r Rules) Validate() error {
	longestService := max(r.Pickup, r.Dropoff, r.FuelStop)
	switch {
	case r.MaxDriving <= 0, r.MaxOnDutyWindow <= 0, r.RequiredRest <= 0, r.MaxCycle <= 0, r.Restart <= 0:
		return fmt.Errorf("%w: hour limits must be positive", domain.ErrValidation)
	case r.FuelIntervalMiles <= 0:
		return fmt.Errorf("%w: fuel interval must be positive", domain.ErrValidation)
	case r.PreTrip < 0, r.FuelStop < 0, r.Pickup < 0, r.Dropoff < 0, r.MergeMiles < 0:
		return fmt.Errorf("%w: service times must not be negative", domain.ErrValidation)
	case r.PreTrip+longestService >= r.MaxOnDutyWindow, r.PreTrip+longestService >= r.MaxCycle:
		return fmt.Errorf("%w: a fresh shift cannot fit pre-trip and service time", domain.ErrValidation)
	}
	return nil
}
