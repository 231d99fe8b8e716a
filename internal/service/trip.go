// Package service contains the business logic for the HaulTrackr API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// TripService implements business logic for Trip operations.
// Every operation is scoped to the calling user.
type TripService struct {
	repo          repo.TripRepo
	maxCycleHours float64
}

// NewTripService constructs a TripService backed by the provided TripRepo.
// maxCycleHours bounds the cycle hours a trip may start with.
func NewTripService(r repo.TripRepo, maxCycleHours float64) *TripService {
	return &TripService{repo: r, maxCycleHours: maxCycleHours}
}

// Create validates and persists a new trip owned by trip.UserID.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := s.validate(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns one of the user's trips.
func (s *TripService) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// List returns a page of the user's trips, newest first, and the total count.
// Always returns a non-nil slice.
func (s *TripService) List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Update validates and updates an existing trip of trip.UserID.
func (s *TripService) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := s.validate(trip); err != nil {
		return domain.Trip{}, err
	}
	result, err := s.repo.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip together with its stops and logs.
func (s *TripService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

func normalizeTrip(t domain.Trip) domain.Trip {
	t.CurrentLocation = strings.TrimSpace(t.CurrentLocation)
	t.PickupLocation = strings.TrimSpace(t.PickupLocation)
	t.DropoffLocation = strings.TrimSpace(t.DropoffLocation)
	return t
}

func (s *TripService) validate(t domain.Trip) error {
	switch {
	case t.CurrentLocation == "":
		return fmt.Errorf("%w: current_location is required", domain.ErrValidation)
	case t.PickupLocation == "":
		return fmt.Errorf("%w: pickup_location is required", domain.ErrValidation)
	case t.DropoffLocation == "":
		return fmt.Errorf("%w: dropoff_location is required", domain.ErrValidation)
	case t.CurrentCycleHours < 0:
		return fmt.Errorf("%w: current_cycle_hours must not be negative", domain.ErrValidation)
	case t.CurrentCycleHours > s.maxCycleHours:
		return fmt.Errorf("%w: current_cycle_hours must not exceed %g", domain.ErrValidation, s.maxCycleHours)
	}
	return nil
}
