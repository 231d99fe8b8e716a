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

// RestStopRepo defines the persistence operations for planned stops.
// All write and single-read operations are scoped by tripID; callers check
// trip ownership before reaching the repo.
type RestStopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.RestStop) (domain.RestStop, error)

	// GetByID retrieves a single stop under the given trip.
	// Returns domain.ErrNotFound if no stop with that ID exists under that trip.
	GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.RestStop, error)

	// ListByTripID returns all stops for a trip ordered by planned_arrival ascending.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.RestStop, error)

	// Update overwrites the mutable fields of a stop, scoped to stop.TripID.
	Update(ctx context.Context, stop domain.RestStop) (domain.RestStop, error)

	// Delete removes a stop by ID, scoped to the given tripID.
	Delete(ctx context.Context, tripID, stopID uuid.UUID) error

	// DeleteByTripID removes every stop of a trip. Used when a plan is replaced.
	DeleteByTripID(ctx context.Context, tripID uuid.UUID) error
}

type pgRestStopRepo struct {
	db db
}

// NewRestStopRepo constructs a RestStopRepo backed by the provided db connection.
func NewRestStopRepo(db db) RestStopRepo {
	return &pgRestStopRepo{db: db}
}

const restStopColumns = `id, trip_id, name, location, coordinates, stop_type, amenities,
		odometer, planned_arrival, planned_departure`

func (r *pgRestStopRepo) Create(ctx context.Context, stop domain.RestStop) (domain.RestStop, error) {
	const q = `
		INSERT INTO rest_stops (trip_id, name, location, coordinates, stop_type, amenities,
		                        odometer, planned_arrival, planned_departure)
		VALUES (@trip_id, @name, @location, @coordinates, @stop_type, @amenities,
		        @odometer, @planned_arrival, @planned_departure)
		RETURNING ` + restStopColumns

	args, err := restStopArgs(stop)
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("repo.RestStopRepo.Create: %w", err)
	}
	result, err := scanRestStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("repo.RestStopRepo.Create: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgRestStopRepo) GetByID(ctx context.Context, tripID, stopID uuid.UUID) (domain.RestStop, error) {
	const q = `SELECT ` + restStopColumns + `
		FROM rest_stops
		WHERE id = @id AND trip_id = @trip_id`

	result, err := scanRestStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID}))
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("repo.RestStopRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgRestStopRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.RestStop, error) {
	const q = `SELECT ` + restStopColumns + `
		FROM rest_stops
		WHERE trip_id = @trip_id
		ORDER BY planned_arrival, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.RestStopRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	stops := []domain.RestStop{}
	for rows.Next() {
		s, err := scanRestStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RestStopRepo.ListByTripID: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RestStopRepo.ListByTripID: rows: %w", err)
	}
	return stops, nil
}

func (r *pgRestStopRepo) Update(ctx context.Context, stop domain.RestStop) (domain.RestStop, error) {
	const q = `
		UPDATE rest_stops
		SET name              = @name,
		    location          = @location,
		    coordinates       = @coordinates,
		    stop_type         = @stop_type,
		    amenities         = @amenities,
		    odometer          = @odometer,
		    planned_arrival   = @planned_arrival,
		    planned_departure = @planned_departure
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + restStopColumns

	args, err := restStopArgs(stop)
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("repo.RestStopRepo.Update: %w", err)
	}
	result, err := scanRestStop(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.RestStop{}, fmt.Errorf("repo.RestStopRepo.Update: %w", mapPgError(err))
	}
	return result, nil
}

func (r *pgRestStopRepo) Delete(ctx context.Context, tripID, stopID uuid.UUID) error {
	const q = `DELETE FROM rest_stops WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": stopID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.RestStopRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RestStopRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgRestStopRepo) DeleteByTripID(ctx context.Context, tripID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM rest_stops WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": tripID}); err != nil {
		return fmt.Errorf("repo.RestStopRepo.DeleteByTripID: %w", err)
	}
	return nil
}

// restStopArgs marshals the JSON columns up front; pgx sends []byte to a
// jsonb parameter as raw JSON text.
func restStopArgs(stop domain.RestStop) (pgx.NamedArgs, error) {
	var coords []byte
	if stop.Coordinates != nil {
		b, err := json.Marshal(stop.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("marshal coordinates: %w", err)
		}
		coords = b
	}
	amenities := stop.Amenities
	if amenities == nil {
		amenities = map[string]any{}
	}
	am, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("marshal amenities: %w", err)
	}
	return pgx.NamedArgs{
		"id":                stop.ID,
		"trip_id":           stop.TripID,
		"name":              stop.Name,
		"location":          stop.Location,
		"coordinates":       coords, // nil becomes NULL
		"stop_type":         string(stop.Type),
		"amenities":         am,
		"odometer":          stop.Odometer,
		"planned_arrival":   stop.PlannedArrival,
		"planned_departure": stop.PlannedDeparture,
	}, nil
}

func scanRestStop(s scanner) (domain.RestStop, error) {
	var (
		st        domain.RestStop
		id        pgtype.UUID
		tripID    pgtype.UUID
		stopType  string
		coords    []byte
		amenities []byte
	)
	err := s.Scan(&id, &tripID, &st.Name, &st.Location, &coords, &stopType, &amenities,
		&st.Odometer, &st.PlannedArrival, &st.PlannedDeparture)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RestStop{}, domain.ErrNotFound
		}
		return domain.RestStop{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.TripID = uuid.UUID(tripID.Bytes)
	st.Type = domain.StopType(stopType)
	if coords != nil {
		st.Coordinates = &domain.Coordinates{}
		if err := json.Unmarshal(coords, st.Coordinates); err != nil {
			return domain.RestStop{}, fmt.Errorf("unmarshal coordinates: %w", err)
		}
	}
	if err := json.Unmarshal(amenities, &st.Amenities); err != nil {
		return domain.RestStop{}, fmt.Errorf("unmarshal amenities: %w", err)
	}
	return st, nil
}
