package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/events"
	"github.com/bridgitkanini/haultrackrbackend/internal/hos"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// Router computes the driving route for a trip. *routing.Client satisfies it.
type Router interface {
	CalculateRoute(ctx context.Context, trip domain.Trip) (domain.Route, error)
}

// PlanObserver is told the result ("ok", "routing_error", "rate_limited",
// "invalid" or "error") and duration of every plan.
type PlanObserver func(result string, d time.Duration)

// PlanService routes a trip, schedules it under the hours-of-service rules
// and stores the resulting stops and daily logs.
type PlanService struct {
	trips     repo.TripRepo
	plans     repo.PlanRepo
	router    Router
	publisher events.Publisher
	rules     hos.Rules
	observe   PlanObserver
	now       func() time.Time
}

// NewPlanService constructs a PlanService. observe may be nil.
func NewPlanService(
	trips repo.TripRepo,
	plans repo.PlanRepo,
	router Router,
	publisher events.Publisher,
	rules hos.Rules,
	observe PlanObserver,
) *PlanService {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &PlanService{
		trips:     trips,
		plans:     plans,
		router:    router,
		publisher: publisher,
		rules:     rules,
		observe:   observe,
		now:       time.Now,
	}
}

// Plan plans the user's trip departing at start (now when zero), replacing
// any stops and logs stored for it.
func (s *PlanService) Plan(ctx context.Context, userID, tripID uuid.UUID, start time.Time) (domain.Plan, error) {
	began := s.now()
	plan, err := s.plan(ctx, userID, tripID, start)
	s.observe(planResult(err), s.now().Sub(began))
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Plan: %w", err)
	}
	return plan, nil
}

func (s *PlanService) plan(ctx context.Context, userID, tripID uuid.UUID, start time.Time) (domain.Plan, error) {
	if start.IsZero() {
		start = s.now()
	}
	start = start.UTC().Truncate(time.Minute)

	trip, err := s.trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return domain.Plan{}, err
	}
	route, err := s.router.CalculateRoute(ctx, trip)
	if err != nil {
		return domain.Plan{}, err
	}
	legs, err := hos.LegsFromRoute(trip, route, s.rules)
	if err != nil {
		return domain.Plan{}, err
	}
	schedule, err := hos.Plan(legs, hos.Hours(trip.CurrentCycleHours), start, s.rules)
	if err != nil {
		return domain.Plan{}, err
	}

	days := hos.SplitDays(schedule.Activities)
	sheets := make([]domain.LogSheet, 0, len(days))
	for _, d := range days {
		sheets = append(sheets, d.LogSheet(trip.ID))
	}
	stops, logs, err := s.plans.ReplacePlan(ctx, trip.ID, start, schedule.Stops, sheets)
	if err != nil {
		return domain.Plan{}, err
	}

	slog.InfoContext(ctx, "trip planned",
		"trip_id", trip.ID,
		"miles", route.Miles(),
		"driving_hours", schedule.DrivingHours(),
		"stops", len(stops),
		"log_days", len(logs),
	)
	s.publish(ctx, events.TripPlanned{
		TripID:    trip.ID,
		UserID:    userID,
		Miles:     route.Miles(),
		Hours:     schedule.End.Sub(schedule.Start).Hours(),
		Stops:     len(stops),
		LogDays:   len(logs),
		PlannedAt: s.now().UTC(),
	})

	trip.PlannedStart = &start
	return domain.Plan{Trip: trip, Route: route, Stops: nonNil(stops), Logs: nonNil(logs)}, nil
}

// publish never fails the request; a lost event is only logged.
func (s *PlanService) publish(ctx context.Context, e events.TripPlanned) {
	if err := s.publisher.PublishTripPlanned(ctx, e); err != nil {
		slog.WarnContext(ctx, "publish trip.planned failed", "trip_id", e.TripID, "error", err)
	}
}

func planResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrRouting):
		return "routing_error"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return "invalid"
	default:
		return "error"
	}
}
