package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// txDB is a db that can open a transaction. *pgxpool.Pool and pgx.Tx both
// satisfy it; on a pgx.Tx, Begin opens a savepoint.
type txDB interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlanRepo persists the output of trip planning and log generation. Each call
// runs in a single transaction so a trip never shows a half-replaced plan.
type PlanRepo interface {
	// ReplacePlan records start as the trip's planned departure, deletes the
	// trip's stops and log sheets and inserts the given ones, including every
	// sheet's duty statuses.
	ReplacePlan(ctx context.Context, tripID uuid.UUID, start time.Time, stops []domain.RestStop, sheets []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error)

	// ReplaceLogs deletes the trip's log sheets and inserts the given ones.
	ReplaceLogs(ctx context.Context, tripID uuid.UUID, sheets []domain.LogSheet) ([]domain.LogSheet, error)
}

type pgPlanRepo struct {
	db txDB
}

// NewPlanRepo constructs a PlanRepo backed by the provided connection.
func NewPlanRepo(db txDB) PlanRepo {
	return &pgPlanRepo{db: db}
}

func (r *pgPlanRepo) ReplacePlan(ctx context.Context, tripID uuid.UUID, start time.Time, stops []domain.RestStop, sheets []domain.LogSheet) ([]domain.RestStop, []domain.LogSheet, error) {
	var (
		savedStops  []domain.RestStop
		savedSheets []domain.LogSheet
	)
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := setPlannedStart(ctx, tx, tripID, start); err != nil {
			return err
		}
		stopRepo := NewRestStopRepo(tx)
		if err := stopRepo.DeleteByTripID(ctx, tripID); err != nil {
			return err
		}
		savedStops = make([]domain.RestStop, 0, len(stops))
		for _, s := range stops {
			s.TripID = tripID
			saved, err := stopRepo.Create(ctx, s)
			if err != nil {
				return err
			}
			savedStops = append(savedStops, saved)
		}

		var err error
		savedSheets, err = replaceLogs(ctx, tx, tripID, sheets)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("repo.PlanRepo.ReplacePlan: %w", err)
	}
	return savedStops, savedSheets, nil
}

func (r *pgPlanRepo) ReplaceLogs(ctx context.Context, tripID uuid.UUID, sheets []domain.LogSheet) ([]domain.LogSheet, error) {
	var saved []domain.LogSheet
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		saved, err = replaceLogs(ctx, tx, tripID, sheets)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ReplaceLogs: %w", err)
	}
	return saved, nil
}

func setPlannedStart(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, start time.Time) error {
	const q = `UPDATE trips SET planned_start = @start, updated_at = now() WHERE id = @id`

	tag, err := tx.Exec(ctx, q, pgx.NamedArgs{"id": tripID, "start": start})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func replaceLogs(ctx context.Context, tx pgx.Tx, tripID uuid.UUID, sheets []domain.LogSheet) ([]domain.LogSheet, error) {
	sheetRepo := NewLogSheetRepo(tx)
	statusRepo := NewDutyStatusRepo(tx)

	if err := sheetRepo.DeleteByTripID(ctx, tripID); err != nil {
		return nil, err
	}
	out := make([]domain.LogSheet, 0, len(sheets))
	for _, sheet := range sheets {
		sheet.TripID = tripID
		saved, err := sheetRepo.Create(ctx, sheet)
		if err != nil {
			return nil, err
		}
		saved.DutyStatuses = make([]domain.DutyStatus, 0, len(sheet.DutyStatuses))
		for _, ds := range sheet.DutyStatuses {
			ds.LogSheetID = saved.ID
			s, err := statusRepo.Create(ctx, ds)
			if err != nil {
				return nil, err
			}
			saved.DutyStatuses = append(saved.DutyStatuses, s)
		}
		out = append(out, saved)
	}
	return out, nil
}
