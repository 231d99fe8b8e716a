package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/hos"
	"github.com/bridgitkanini/haultrackrbackend/internal/loggrid"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// LogSheetService implements log sheet CRUD plus the actions derived from a
// sheet: generation from stored stops, the grid image and the export.
type LogSheetService struct {
	trips    repo.TripRepo
	stops    repo.RestStopRepo
	sheets   repo.LogSheetRepo
	statuses repo.DutyStatusRepo
	plans    repo.PlanRepo
	preTrip  time.Duration
}

// NewLogSheetService constructs a LogSheetService backed by the provided repos.
// preTrip is the inspection time logged at the start of generated logs.
func NewLogSheetService(
	trips repo.TripRepo,
	stops repo.RestStopRepo,
	sheets repo.LogSheetRepo,
	statuses repo.DutyStatusRepo,
	plans repo.PlanRepo,
	preTrip time.Duration,
) *LogSheetService {
	return &LogSheetService{trips: trips, stops: stops, sheets: sheets, statuses: statuses, plans: plans, preTrip: preTrip}
}

// Create validates the sheet and stores it on one of the user's trips.
// A trip_id that is not one of the user's trips is a validation error.
func (s *LogSheetService) Create(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error) {
	if err := s.checkTrip(ctx, userID, sheet.TripID); err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.Create: %w", err)
	}
	if err := validateLogSheet(sheet); err != nil {
		return domain.LogSheet{}, err
	}
	result, err := s.sheets.Create(ctx, sheet)
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns the sheet with its duty statuses loaded.
func (s *LogSheetService) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error) {
	sheet, err := s.sheets.GetByID(ctx, userID, id)
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.GetByID: %w", err)
	}
	statuses, err := s.statuses.ListByLogSheetID(ctx, sheet.ID)
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.GetByID: %w", err)
	}
	sheet.DutyStatuses = nonNil(statuses)
	return sheet, nil
}

// List returns a page of the user's sheets, newest date first, optionally
// restricted to one trip.
func (s *LogSheetService) List(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error) {
	sheets, total, err := s.sheets.ListPaged(ctx, userID, tripID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.LogSheetService.List: %w", err)
	}
	return nonNil(sheets), total, nil
}

// Update validates and overwrites a sheet. Moving the sheet to another trip
// requires that trip to be the user's too.
func (s *LogSheetService) Update(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error) {
	if err := s.checkTrip(ctx, userID, sheet.TripID); err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.Update: %w", err)
	}
	if err := validateLogSheet(sheet); err != nil {
		return domain.LogSheet{}, err
	}
	result, err := s.sheets.Update(ctx, userID, sheet)
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("service.LogSheetService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a sheet and its duty statuses.
func (s *LogSheetService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.sheets.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.LogSheetService.Delete: %w", err)
	}
	return nil
}

// Generate rebuilds the trip's daily sheets from its stored stops and replaces
// any existing sheets. The timeline starts at the trip's planned departure, or
// at its creation time when the trip was never planned.
func (s *LogSheetService) Generate(ctx context.Context, userID, tripID uuid.UUID) ([]domain.LogSheet, error) {
	trip, err := s.trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Generate: %w", err)
	}
	stops, err := s.stops.ListByTripID(ctx, trip.ID)
	if err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Generate: %w", err)
	}

	start := trip.CreatedAt
	if trip.PlannedStart != nil {
		start = *trip.PlannedStart
	}
	timeline := hos.TimelineFromStops(trip, start.UTC(), stops, s.preTrip)
	days := hos.SplitDays(timeline)
	sheets := make([]domain.LogSheet, 0, len(days))
	for _, d := range days {
		sheets = append(sheets, d.LogSheet(trip.ID))
	}

	saved, err := s.plans.ReplaceLogs(ctx, trip.ID, sheets)
	if err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Generate: %w", err)
	}
	return nonNil(saved), nil
}

// Grid renders the sheet's duty statuses as a PNG image.
func (s *LogSheetService) Grid(ctx context.Context, userID, id uuid.UUID) ([]byte, error) {
	sheet, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := loggrid.Render(&buf, sheet.DutyStatuses); err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Grid: %w", err)
	}
	return buf.Bytes(), nil
}

// Export returns one ExportRow per duty status across the trip's sheets,
// ordered by date. Sheets with no statuses contribute one row with empty
// status fields.
func (s *LogSheetService) Export(ctx context.Context, userID, tripID uuid.UUID) ([]domain.ExportRow, error) {
	if _, err := s.trips.GetByID(ctx, userID, tripID); err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Export: %w", err)
	}
	sheets, err := s.sheets.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.LogSheetService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, sheet := range sheets {
		statuses, err := s.statuses.ListByLogSheetID(ctx, sheet.ID)
		if err != nil {
			return nil, fmt.Errorf("service.LogSheetService.Export: %w", err)
		}
		base := domain.ExportRow{
			TripID:           tripID.String(),
			Date:             sheet.Date.Format(time.DateOnly),
			CarrierName:      sheet.CarrierName,
			StartingOdometer: sheet.StartingOdometer,
			EndingOdometer:   sheet.EndingOdometer,
			TotalMiles:       sheet.TotalMiles,
		}
		if len(statuses) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, ds := range statuses {
			row := base
			row.Status = ds.Status
			row.StartTime = ds.StartTime.String()
			row.EndTime = ds.EndTime.String()
			row.Hours = ds.DurationHours()
			row.Location = ds.Location
			row.Odometer = ds.Odometer
			row.Remarks = ds.Remarks
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// checkTrip reports a validation error when tripID is not one of the user's trips.
func (s *LogSheetService) checkTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	_, err := s.trips.GetByID(ctx, userID, tripID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: trip %s does not exist", domain.ErrValidation, tripID)
	}
	return err
}

func validateLogSheet(sheet domain.LogSheet) error {
	if sheet.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if sheet.StartingOdometer < 0 || sheet.EndingOdometer < 0 || sheet.TotalMiles < 0 {
		return fmt.Errorf("%w: odometer readings and total_miles must not be negative", domain.ErrValidation)
	}
	if sheet.EndingOdometer < sheet.StartingOdometer {
		return fmt.Errorf("%w: ending_odometer must not be less than starting_odometer", domain.ErrValidation)
	}
	if len(sheet.LogData) > 0 && !json.Valid(sheet.LogData) {
		return fmt.Errorf("%w: log_data must be valid JSON", domain.ErrValidation)
	}
	return nil
}

// nonNil turns a nil slice into an empty one so JSON renders [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
