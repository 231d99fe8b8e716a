package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// RestStopService implements business logic for a trip's stops.
// It holds the trips repo because every stop operation first checks that
// the parent trip belongs to the caller.
type RestStopService struct {
	trips repo.TripRepo
	stops repo.RestStopRepo
}

// NewRestStopService constructs a RestStopService backed by the provided repos.
func NewRestStopService(trips repo.TripRepo, stops repo.RestStopRepo) *RestStopService {
	return &RestStopService{trips: trips, stops: stops}
}

// Create validates the stop, verifies the parent trip is the user's, then persists.
// Returns domain.ErrValidation if input violates business rules.
// Returns domain.ErrNotFound if the parent trip does not exist for the user.
func (s *RestStopService) Create(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error) {
	if _, err := s.trips.GetByID(ctx, userID, stop.TripID); err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.Create: %w", err)
	}
	if err := validateRestStop(stop); err != nil {
		return domain.RestStop{}, err
	}
	result, err := s.stops.Create(ctx, stop)
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single stop, scoped to the user's trip.
func (s *RestStopService) GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.RestStop, error) {
	if _, err := s.trips.GetByID(ctx, userID, tripID); err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.GetByID: %w", err)
	}
	result, err := s.stops.GetByID(ctx, tripID, stopID)
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.GetByID: %w", err)
	}
	return result, nil
}

// ListByTripID returns the trip's stops ordered by planned arrival.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RestStopService) ListByTripID(ctx context.Context, userID, tripID uuid.UUID) ([]domain.RestStop, error) {
	if _, err := s.trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.RestStopService.ListByTripID: %w", err)
	}
	stops, err := s.stops.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.RestStopService.ListByTripID: %w", err)
	}
	if stops == nil {
		return []domain.RestStop{}, nil
	}
	return stops, nil
}

// Update validates and persists changes to an existing stop.
func (s *RestStopService) Update(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error) {
	if _, err := s.trips.GetByID(ctx, userID, stop.TripID); err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.Update: %w", err)
	}
	if err := validateRestStop(stop); err != nil {
		return domain.RestStop{}, err
	}
	result, err := s.stops.Update(ctx, stop)
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("service.RestStopService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a stop from the user's trip.
func (s *RestStopService) Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	if _, err := s.trips.GetByID(ctx, userID, tripID); err != nil {
		return fmt.Errorf("service.RestStopService.Delete: %w", err)
	}
	if err := s.stops.Delete(ctx, tripID, stopID); err != nil {
		return fmt.Errorf("service.RestStopService.Delete: %w", err)
	}
	return nil
}

// validateRestStop enforces business rules common to both Create and Update.
//   - Name must be non-empty (whitespace-only names are rejected).
//   - Type must be REST, FUEL or BOTH.
//   - Planned departure must not be before planned arrival.
//   - Odometer must not be negative.
func validateRestStop(stop domain.RestStop) error {
	if strings.TrimSpace(stop.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if !stop.Type.Valid() {
		return fmt.Errorf("%w: type must be one of REST, FUEL, BOTH", domain.ErrValidation)
	}
	if stop.PlannedArrival.IsZero() || stop.PlannedDeparture.IsZero() {
		return fmt.Errorf("%w: planned_arrival and planned_departure are required", domain.ErrValidation)
	}
	if stop.PlannedDeparture.Before(stop.PlannedArrival) {
		return fmt.Errorf("%w: planned_departure must not be before planned_arrival", domain.ErrValidation)
	}
	if stop.Odometer < 0 {
		return fmt.Errorf("%w: odometer must not be negative", domain.ErrValidation)
	}
	return nil
}
