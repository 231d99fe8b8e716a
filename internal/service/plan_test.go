package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/events"
	"github.com/bridgitkanini/haultrackrbackend/internal/hos"
	"github.com/bridgitkanini/haultrackrbackend/internal/service"
)

type routerFunc func(ctx context.Context, trip domain.Trip) (domain.Route, error)

func (f routerFunc) CalculateRoute(ctx context.Context, trip domain.Trip) (domain.Route, error) {
	return f(ctx, trip)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []events.TripPlanned
	err    error
}

func (p *recordingPublisher) PublishTripPlanned(_ context.Context, e events.TripPlanned) error {
	p.events = append(p.events, e)
	return p.err
}
func (p *recordingPublisher) Close() error { return nil }

// routeOf builds a two-leg route of the given miles driven at 50 mph.
func routeOf(leg1, leg2 float64) domain.Route {
	leg := func(miles float64) domain.RouteLeg {
		return domain.RouteLeg{DistanceMeters: miles * domain.MetersPerMile, DurationSeconds: miles / 50 * 3600}
	}
	l1, l2 := leg(leg1), leg(leg2)
	return domain.Route{
		DistanceMeters:  l1.DistanceMeters + l2.DistanceMeters,
		DurationSeconds: l1.DurationSeconds + l2.DurationSeconds + 3600,
		Legs:            []domain.RouteLeg{l1, l2},
	}
}

func echoPlans() *mockPlanRepo {
	return &mockPlanRepo{
		replacePlan: func(_ context.Context, _ uuid.UUID, _ time.Time, stops []domain.RestStop, sheets []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error) {
			return stops, sheets, nil
		},
	}
}

type planResult struct {
	result string
	d      time.Duration
}

func newPlanService(trip domain.Trip, router service.Router, plans *mockPlanRepo, pub events.Publisher) (*service.PlanService, *[]planResult) {
	var results []planResult
	svc := service.NewPlanService(ownedTrips(trip), plans, router, pub, hos.DefaultRules(),
		func(result string, d time.Duration) { results = append(results, planResult{result, d}) })
	return svc, &results
}

var departure = time.Date(2025, 3, 3, 6, 0, 0, 0, time.UTC)

func TestPlanService_Plan_LongHaul(t *testing.T) {
	trip := validTrip()
	trip.CurrentCycleHours = 0
	pub := &recordingPublisher{}
	svc, results := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return routeOf(300, 2100), nil
	}), echoPlans(), pub)

	plan, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	require.NoError(t, err)
	assert.Equal(t, trip.ID, plan.Trip.ID)
	assert.InDelta(t, 2400.0, plan.Route.Miles(), 1e-6)

	var fuel, rest int
	for _, s := range plan.Stops {
		if s.Type == domain.StopFuel || s.Type == domain.StopBoth {
			fuel++
		}
		if s.Type == domain.StopRest || s.Type == domain.StopBoth {
			rest++
		}
	}
	assert.Equal(t, 2, fuel, "2400 miles needs two fuel stops")
	assert.Positive(t, rest)
	assert.Greater(t, len(plan.Logs), 2, "a 48h drive spans several days")
	for _, l := range plan.Logs {
		var hours float64
		for _, ds := range l.DutyStatuses {
			hours += ds.DurationHours()
		}
		assert.InDelta(t, 24.0, hours, 1e-9, "day %s", l.Date.Format(time.DateOnly))
	}

	require.Len(t, pub.events, 1)
	assert.Equal(t, trip.ID, pub.events[0].TripID)
	assert.Equal(t, len(plan.Stops), pub.events[0].Stops)
	assert.Equal(t, len(plan.Logs), pub.events[0].LogDays)

	require.Len(t, *results, 1)
	assert.Equal(t, "ok", (*results)[0].result)
}

func TestPlanService_Plan_StoresDeparture(t *testing.T) {
	trip := validTrip()
	var stored time.Time
	plans := &mockPlanRepo{
		replacePlan: func(_ context.Context, _ uuid.UUID, start time.Time, stops []domain.RestStop, sheets []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error) {
			stored = start
			return stops, sheets, nil
		},
	}
	svc, _ := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return routeOf(100, 100), nil
	}), plans, events.Nop{})

	plan, err := svc.Plan(context.Background(), driverID, trip.ID, departure.Add(30*time.Second))

	require.NoError(t, err)
	assert.Equal(t, departure, stored, "departure is stored truncated to the minute")
	require.NotNil(t, plan.Trip.PlannedStart)
	assert.Equal(t, departure, *plan.Trip.PlannedStart)
}

func TestPlanService_Plan_CycleAtCapStartsWithRest(t *testing.T) {
	trip := validTrip()
	trip.CurrentCycleHours = 70
	svc, _ := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return routeOf(100, 100), nil
	}), echoPlans(), events.Nop{})

	plan, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	require.NoError(t, err)
	require.NotEmpty(t, plan.Stops)
	assert.Equal(t, domain.StopRest, plan.Stops[0].Type)
	assert.Equal(t, departure, plan.Stops[0].PlannedArrival, "rest comes before any driving")
}

func TestPlanService_Plan_RoutingError(t *testing.T) {
	trip := validTrip()
	plans := &mockPlanRepo{
		replacePlan: func(context.Context, uuid.UUID, time.Time, []domain.RestStop, []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error) {
			t.Fatal("nothing is stored when routing fails")
			return nil, nil, nil
		},
	}
	svc, results := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return domain.Route{}, fmt.Errorf("%w: location not found", domain.ErrGeocoding)
	}), plans, events.Nop{})

	_, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	assert.ErrorIs(t, err, domain.ErrRouting)
	assert.Equal(t, "routing_error", (*results)[0].result)
}

func TestPlanService_Plan_RateLimited(t *testing.T) {
	trip := validTrip()
	svc, results := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return domain.Route{}, domain.ErrRateLimited
	}), echoPlans(), events.Nop{})

	_, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, "rate_limited", (*results)[0].result)
}

func TestPlanService_Plan_NotOwner(t *testing.T) {
	trip := validTrip()
	svc, _ := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		t.Fatal("router must not be called for another user's trip")
		return domain.Route{}, nil
	}), echoPlans(), events.Nop{})

	_, err := svc.Plan(context.Background(), otherID, trip.ID, departure)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanService_Plan_PublishFailureIsIgnored(t *testing.T) {
	trip := validTrip()
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return routeOf(50, 50), nil
	}), echoPlans(), pub)

	_, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestPlanService_Plan_StoreError(t *testing.T) {
	trip := validTrip()
	boom := errors.New("tx aborted")
	svc, results := newPlanService(trip, routerFunc(func(context.Context, domain.Trip) (domain.Route, error) {
		return routeOf(50, 50), nil
	}), &mockPlanRepo{
		replacePlan: func(context.Context, uuid.UUID, time.Time, []domain.RestStop, []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error) {
			return nil, nil, boom
		},
	}, events.Nop{})

	_, err := svc.Plan(context.Background(), driverID, trip.ID, departure)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "error", (*results)[0].result)
}
