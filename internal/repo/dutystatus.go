package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// DutyStatusRepo defines the persistence operations for duty status intervals.
// Reads and writes by ID are scoped to the user owning the parent trip.
type DutyStatusRepo interface {
	// Create inserts a status. The caller has already checked sheet ownership.
	Create(ctx context.Context, ds domain.DutyStatus) (domain.DutyStatus, error)

	// GetByID retrieves a status whose log sheet belongs to one of userID's trips.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.DutyStatus, error)

	// ListPaged returns one page of the user's statuses ordered by sheet then start time.
	// A non-nil logSheetID restricts the listing to that sheet.
	ListPaged(ctx context.Context, userID uuid.UUID, logSheetID *uuid.UUID, p domain.PaginationParams) ([]domain.DutyStatus, int64, error)

	// ListByLogSheetID returns every status of a sheet ordered by start time.
	ListByLogSheetID(ctx context.Context, logSheetID uuid.UUID) ([]domain.DutyStatus, error)

	// Update overwrites the mutable fields of a status owned by userID.
	Update(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error)

	// Delete removes a status owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type pgDutyStatusRepo struct {
	db db
}

// NewDutyStatusRepo constructs a DutyStatusRepo backed by the provided db connection.
func NewDutyStatusRepo(db db) DutyStatusRepo {
	return &pgDutyStatusRepo{db: db}
}

const dutyStatusColumns = `ds.id, ds.log_sheet_id, ds.status, ds.start_time, ds.end_time,
		ds.location, ds.odometer, ds.remarks, ds.created_at`

// ownedByUser restricts ds rows to sheets of trips owned by @user_id.
const ownedByUser = `ds.log_sheet_id IN (
			SELECT ls.id FROM log_sheets ls JOIN trips t ON t.id = ls.trip_id
			WHERE t.user_id = @user_id)`

func (r *pgDutyStatusRepo) Create(ctx context.Context, ds domain.DutyStatus) (domain.DutyStatus, error) {
	const q = `
		INSERT INTO duty_statuses AS ds (log_sheet_id, status, start_time, end_time, location, odometer, remarks)
		VALUES (@log_sheet_id, @status, @start_time, @end_time, @location, @odometer, @remarks)
		RETURNING ` + dutyStatusColumns

	result, err := scanDutyStatus(r.db.QueryRow(ctx, q, dutyStatusArgs(uuid.Nil, ds)))
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("repo.DutyStatusRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgDutyStatusRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.DutyStatus, error) {
	const q = `SELECT ` + dutyStatusColumns + `
		FROM duty_statuses ds
		WHERE ds.id = @id AND ` + ownedByUser

	result, err := scanDutyStatus(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("repo.DutyStatusRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgDutyStatusRepo) ListPaged(ctx context.Context, userID uuid.UUID, logSheetID *uuid.UUID, p domain.PaginationParams) ([]domain.DutyStatus, int64, error) {
	const q = `SELECT ` + dutyStatusColumns + `, COUNT(*) OVER ()
		FROM duty_statuses ds
		WHERE ` + ownedByUser + `
		  AND (@log_sheet_id::uuid IS NULL OR ds.log_sheet_id = @log_sheet_id::uuid)
		ORDER BY ds.log_sheet_id, ds.start_time, ds.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id":      userID,
		"log_sheet_id": logSheetID,
		"limit":        p.Limit,
		"offset":       p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DutyStatusRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	out := []domain.DutyStatus{}
	var total int64
	for rows.Next() {
		ds, err := scanDutyStatus(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.DutyStatusRepo.ListPaged: scan: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.DutyStatusRepo.ListPaged: rows: %w", err)
	}
	return out, total, nil
}

func (r *pgDutyStatusRepo) ListByLogSheetID(ctx context.Context, logSheetID uuid.UUID) ([]domain.DutyStatus, error) {
	const q = `SELECT ` + dutyStatusColumns + `
		FROM duty_statuses ds
		WHERE ds.log_sheet_id = @log_sheet_id
		ORDER BY ds.start_time, ds.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"log_sheet_id": logSheetID})
	if err != nil {
		return nil, fmt.Errorf("repo.DutyStatusRepo.ListByLogSheetID: %w", err)
	}
	defer rows.Close()

	out := []domain.DutyStatus{}
	for rows.Next() {
		ds, err := scanDutyStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DutyStatusRepo.ListByLogSheetID: scan: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DutyStatusRepo.ListByLogSheetID: rows: %w", err)
	}
	return out, nil
}

func (r *pgDutyStatusRepo) Update(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error) {
	const q = `
		UPDATE duty_statuses ds
		SET log_sheet_id = @log_sheet_id,
		    status       = @status,
		    start_time   = @start_time,
		    end_time     = @end_time,
		    location     = @location,
		    odometer     = @odometer,
		    remarks      = @remarks
		WHERE ds.id = @id AND ` + ownedByUser + `
		RETURNING ` + dutyStatusColumns

	result, err := scanDutyStatus(r.db.QueryRow(ctx, q, dutyStatusArgs(userID, ds)))
	if err != nil {
		return domain.DutyStatus{}, fmt.Errorf("repo.DutyStatusRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgDutyStatusRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `DELETE FROM duty_statuses ds WHERE ds.id = @id AND ` + ownedByUser

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.DutyStatusRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DutyStatusRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// clockToPg maps a ClockTime onto a Postgres TIME value. 24:00 is a valid TIME.
func clockToPg(c domain.ClockTime) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c) * int64(time.Minute/time.Microsecond), Valid: true}
}

func clockFromPg(t pgtype.Time) domain.ClockTime {
	return domain.ClockTime(t.Microseconds / int64(time.Minute/time.Microsecond))
}

func dutyStatusArgs(userID uuid.UUID, ds domain.DutyStatus) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":           ds.ID,
		"user_id":      userID,
		"log_sheet_id": ds.LogSheetID,
		"status":       string(ds.Status),
		"start_time":   clockToPg(ds.StartTime),
		"end_time":     clockToPg(ds.EndTime),
		"location":     ds.Location,
		"odometer":     ds.Odometer,
		"remarks":      ds.Remarks,
	}
}

func scanDutyStatus(s scanner, extra ...any) (domain.DutyStatus, error) {
	var (
		ds         domain.DutyStatus
		id         pgtype.UUID
		sheetID    pgtype.UUID
		status     string
		start, end pgtype.Time
	)
	dest := append([]any{&id, &sheetID, &status, &start, &end,
		&ds.Location, &ds.Odometer, &ds.Remarks, &ds.CreatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DutyStatus{}, domain.ErrNotFound
		}
		return domain.DutyStatus{}, err
	}
	ds.ID = uuid.UUID(id.Bytes)
	ds.LogSheetID = uuid.UUID(sheetID.Bytes)
	ds.Status = domain.Status(status)
	ds.StartTime = clockFromPg(start)
	ds.EndTime = clockFromPg(end)
	return ds, nil
}
