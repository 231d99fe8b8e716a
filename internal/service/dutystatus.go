package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

// DutyStatusService implements CRUD for the status intervals on log sheets.
type DutyStatusService struct {
	sheets   repo.LogSheetRepo
	statuses repo.DutyStatusRepo
}

// NewDutyStatusService constructs a DutyStatusService backed by the provided repos.
func NewDutyStatusService(sheets repo.LogSheetRepo, statuses repo.DutyStatusRepo) *DutyStatusService {
	return &DutyStatusService{sheets: sheets, statuses: statuses}
}

// Create validates ds and adds it to one of the user's log sheets.
// Returns domain.ErrForbidden if the sheet belongs to another user.
func (s *DutyStatusService) Create(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error) {
	if err := validateDutyStatus(ds); err != nil {
		return domain.DutyStatus{}, err
	}
	if err := s.checkSheet(ctx, userID, ds.LogSheetID); err != nil {
		return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.Create: %w", err)
	}
	result, err := s.statuses.Create(ctx, ds)
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns one of the user's duty statuses.
func (s *DutyStatusService) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.DutyStatus, error) {
	result, err := s.statuses.GetByID(ctx, userID, id)
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.GetByID: %w", err)
	}
	return result, nil
}

// List returns a page of the user's statuses, optionally for one sheet.
func (s *DutyStatusService) List(ctx context.Context, userID uuid.UUID, logSheetID *uuid.UUID, p domain.PaginationParams) ([]domain.DutyStatus, int64, error) {
	statuses, total, err := s.statuses.ListPaged(ctx, userID, logSheetID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DutyStatusService.List: %w", err)
	}
	return nonNil(statuses), total, nil
}

// Update overwrites a status. Moving it onto a sheet owned by another user
// returns domain.ErrForbidden.
func (s *DutyStatusService) Update(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error) {
	if err := validateDutyStatus(ds); err != nil {
		return domain.DutyStatus{}, err
	}
	current, err := s.statuses.GetByID(ctx, userID, ds.ID)
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.Update: %w", err)
	}
	if ds.LogSheetID != current.LogSheetID {
		if err := s.checkSheet(ctx, userID, ds.LogSheetID); err != nil {
			return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.Update: %w", err)
		}
	}
	result, err := s.statuses.Update(ctx, userID, ds)
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("service.DutyStatusService.Update: %w", err)
	}
	return result, nil
}

// Delete removes one of the user's statuses.
func (s *DutyStatusService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.statuses.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("service.DutyStatusService.Delete: %w", err)
	}
	return nil
}

// checkSheet distinguishes a missing sheet (validation error on the
// log_sheet field) from another user's sheet (forbidden).
func (s *DutyStatusService) checkSheet(ctx context.Context, userID, sheetID uuid.UUID) error {
	owner, err := s.sheets.OwnerID(ctx, sheetID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: log sheet %s does not exist", domain.ErrValidation, sheetID)
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return fmt.Errorf("%w: log sheet belongs to another user", domain.ErrForbidden)
	}
	return nil
}

func validateDutyStatus(ds domain.DutyStatus) error {
	if !ds.Status.Valid() {
		return fmt.Errorf("%w: status must be one of OFF, SB, D, ON", domain.ErrValidation)
	}
	if ds.StartTime == ds.EndTime {
		return fmt.Errorf("%w: start_time and end_time must differ", domain.ErrValidation)
	}
	if ds.StartTime < 0 || ds.StartTime > domain.MinutesPerDay || ds.EndTime < 0 || ds.EndTime > domain.MinutesPerDay {
		return fmt.Errorf("%w: times must be between 00:00 and 24:00", domain.ErrValidation)
	}
	if ds.StartTime == domain.MinutesPerDay {
		return fmt.Errorf("%w: start_time cannot be 24:00", domain.ErrValidation)
	}
	if ds.Odometer < 0 {
		return fmt.Errorf("%w: odometer must not be negative", domain.ErrValidation)
	}
	return nil
}
