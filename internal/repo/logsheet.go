package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// LogSheetRepo defines the persistence operations for daily log sheets.
// Reads and writes addressed by sheet ID are scoped to the user owning the
// sheet's trip. Sheets are returned without their duty statuses.
type LogSheetRepo interface {
	// Create inserts a sheet. A second sheet for the same trip and date
	// yields domain.ErrConflict.
	Create(ctx context.Context, sheet domain.LogSheet) (domain.LogSheet, error)

	// GetByID retrieves a sheet whose trip is owned by userID.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error)

	// ListPaged returns one page of the user's sheets, newest date first.
	// A non-nil tripID restricts the listing to that trip.
	ListPaged(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error)

	// ListByTripID returns every sheet of a trip in date order.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.LogSheet, error)

	// Update overwrites the mutable fields of a sheet owned by userID.
	Update(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error)

	// Delete removes a sheet owned by userID and, by cascade, its duty statuses.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// DeleteByTripID removes every sheet of a trip.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) error

	// OwnerID returns the user owning the sheet's trip, regardless of caller.
	OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

type pgLogSheetRepo struct {
	db db
}

// NewLogSheetRepo constructs a LogSheetRepo backed by the provided db connection.
func NewLogSheetRepo(db db) LogSheetRepo {
	return &pgLogSheetRepo{db: db}
}

const logSheetColumns = `ls.id, ls.trip_id, ls.date, ls.total_miles, ls.starting_odometer,
		ls.ending_odometer, ls.carrier_name, ls.carrier_address, ls.driver_signature,
		ls.notes, ls.log_data, ls.created_at, ls.updated_at`

func (r *pgLogSheetRepo) Create(ctx context.Context, sheet domain.LogSheet) (domain.LogSheet, error) {
	const q = `
		INSERT INTO log_sheets AS ls (trip_id, date, total_miles, starting_odometer, ending_odometer,
		                              carrier_name, carrier_address, driver_signature, notes, log_data)
		VALUES (@trip_id, @date, @total_miles, @starting_odometer, @ending_odometer,
		        @carrier_name, @carrier_address, @driver_signature, @notes, @log_data)
		RETURNING ` + logSheetColumns

	result, err := scanLogSheet(r.db.QueryRow(ctx, q, logSheetArgs(uuid.Nil, sheet)))
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("repo.LogSheetRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgLogSheetRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error) {
	const q = `SELECT ` + logSheetColumns + `
		FROM log_sheets ls
		JOIN trips t ON t.id = ls.trip_id
		WHERE ls.id = @id AND t.user_id = @user_id`

	result, err := scanLogSheet(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("repo.LogSheetRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgLogSheetRepo) ListPaged(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error) {
	const q = `SELECT ` + logSheetColumns + `, COUNT(*) OVER ()
		FROM log_sheets ls
		JOIN trips t ON t.id = ls.trip_id
		WHERE t.user_id = @user_id
		  AND (@trip_id::uuid IS NULL OR ls.trip_id = @trip_id::uuid)
		ORDER BY ls.date DESC, ls.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"trip_id": tripID, // nil becomes NULL
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LogSheetRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	sheets := []domain.LogSheet{}
	var total int64
	for rows.Next() {
		s, err := scanLogSheet(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.LogSheetRepo.ListPaged: scan: %w", err)
		}
		sheets = append(sheets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.LogSheetRepo.ListPaged: rows: %w", err)
	}
	return sheets, total, nil
}

func (r *pgLogSheetRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.LogSheet, error) {
	const q = `SELECT ` + logSheetColumns + `
		FROM log_sheets ls
		WHERE ls.trip_id = @trip_id
		ORDER BY ls.date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.LogSheetRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	sheets := []domain.LogSheet{}
	for rows.Next() {
		s, err := scanLogSheet(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.LogSheetRepo.ListByTripID: scan: %w", err)
		}
		sheets = append(sheets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.LogSheetRepo.ListByTripID: rows: %w", err)
	}
	return sheets, nil
}

func (r *pgLogSheetRepo) Update(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error) {
	const q = `
		UPDATE log_sheets ls
		SET trip_id           = @trip_id,
		    date              = @date,
		    total_miles       = @total_miles,
		    starting_odometer = @starting_odometer,
		    ending_odometer   = @ending_odometer,
		    carrier_name      = @carrier_name,
		    carrier_address   = @carrier_address,
		    driver_signature  = @driver_signature,
		    notes             = @notes,
		    log_data          = @log_data,
		    updated_at        = now()
		FROM trips t
		WHERE ls.id = @id AND t.id = ls.trip_id AND t.user_id = @user_id
		RETURNING ` + logSheetColumns

	result, err := scanLogSheet(r.db.QueryRow(ctx, q, logSheetArgs(userID, sheet)))
	if err != nil {
		return domain.LogSheet{}, fmt.Errorf("repo.LogSheetRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgLogSheetRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const q = `
		DELETE FROM log_sheets ls
		USING trips t
		WHERE ls.id = @id AND t.id = ls.trip_id AND t.user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.LogSheetRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LogSheetRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgLogSheetRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM log_sheets WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.LogSheetRepo.DeleteByTripID: %w", err)
	}
	return nil
}

func (r *pgLogSheetRepo) OwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	const q = `
		SELECT t.user_id
		FROM log_sheets ls
		JOIN trips t ON t.id = ls.trip_id
		WHERE ls.id = @id`

	var owner pgtype.UUID
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = domain.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("repo.LogSheetRepo.OwnerID: %w", err)
	}
	return uuid.UUID(owner.Bytes), nil
}

func logSheetArgs(userID uuid.UUID, sheet domain.LogSheet) pgx.NamedArgs {
	logData := []byte(sheet.LogData)
	if len(logData) == 0 {
		logData = []byte("{}")
	}
	return pgx.NamedArgs{
		"id":                sheet.ID,
		"user_id":           userID,
		"trip_id":           sheet.TripID,
		"date":              pgtype.Date{Time: sheet.Date, Valid: true},
		"total_miles":       sheet.TotalMiles,
		"starting_odometer": sheet.StartingOdometer,
		"ending_odometer":   sheet.EndingOdometer,
		"carrier_name":      sheet.CarrierName,
		"carrier_address":   sheet.CarrierAddress,
		"driver_signature":  sheet.DriverSignature,
		"notes":             sheet.Notes,
		"log_data":          logData,
	}
}

func scanLogSheet(s scanner, extra ...any) (domain.LogSheet, error) {
	var (
		ls      domain.LogSheet
		id      pgtype.UUID
		tripID  pgtype.UUID
		date    pgtype.Date
		logData []byte
	)
	dest := append([]any{&id, &tripID, &date, &ls.TotalMiles, &ls.StartingOdometer,
		&ls.EndingOdometer, &ls.CarrierName, &ls.CarrierAddress, &ls.DriverSignature,
		&ls.Notes, &logData, &ls.CreatedAt, &ls.UpdatedAt}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LogSheet{}, domain.ErrNotFound
		}
		return domain.LogSheet{}, err
	}
	ls.ID = uuid.UUID(id.Bytes)
	ls.TripID = uuid.UUID(tripID.Bytes)
	ls.Date = date.Time
	ls.LogData = json.RawMessage(logData)
	return ls, nil
}
