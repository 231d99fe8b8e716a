package repo_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/repo"
)

func sheetFixture(tripID uuid.UUID, day int) domain.LogSheet {
	return domain.LogSheet{
		TripID:           tripID,
		Date:             time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
		TotalMiles:       550,
		StartingOdometer: 1000,
		EndingOdometer:   1550,
		CarrierName:      "Acme Freight",
		DriverSignature:  "J. Driver",
		LogData:          json.RawMessage(`{"total_drive":10}`),
	}
}

func TestLogSheetRepo_CreateAndGet(t *testing.T) {
	tx := newTestTx(t)
	trip := createTrip(t, tx)
	r := repo.NewLogSheetRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, sheetFixture(trip.ID, 1))
	require.NoError(t, err)

	got, err := r.GetByID(ctx, trip.UserID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.TripID)
	assert.Equal(t, "2025-06-01", got.Date.Format(time.DateOnly))
	assert.InDelta(t, 550.0, got.TotalMiles, 1e-9)
	assert.Equal(t, "Acme Freight", got.CarrierName)
	assert.JSONEq(t, `{"total_drive":10}`, string(got.LogData))
}

func TestLogSheetRepo_Create_DuplicateDate(t *testing.T) {
	tx := newTestTx(t)
	trip := createTrip(t, tx)
	r := repo.NewLogSheetRepo(tx)
	ctx := context.Background()

	_, err := r.Create(ctx, sheetFixture(trip.ID, 1))
	require.NoError(t, err)

	_, err = r.Create(ctx, sheetFixture(trip.ID, 1))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogSheetRepo_ScopedToOwner(t *testing.T) {
	tx := newTestTx(t)
	trip := createTrip(t, tx)
	other := userFixture(t, tx)
	r := repo.NewLogSheetRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, sheetFixture(trip.ID, 1))
	require.NoError(t, err)

	_, err = r.GetByID(ctx, other.ID, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, other.ID, created.ID), domain.ErrNotFound)

	owner, err := r.OwnerID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.UserID, owner)

	_, err = r.OwnerID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLogSheetRepo_ListPaged(t *testing.T) {
	tx := newTestTx(t)
	trip := createTrip(t, tx)
	r := repo.NewLogSheetRepo(tx)
	tripRepo := repo.NewTripRepo(tx)
	ctx := context.Background()

	second, err := tripRepo.Create(ctx, tripFixture(trip.UserID))
	require.NoError(t, err)

	for day := 1; day <= 3; day++ {
		_, err := r.Create(ctx, sheetFixture(trip.ID, day))
		require.NoError(t, err)
	}
	_, err = r.Create(ctx, sheetFixture(second.ID, 9))
	require.NoError(t, err)

	all, total, err := r.ListPaged(ctx, trip.UserID, nil, domain.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, all, 4)
	assert.Equal(t, 9, all[0].Date.Day(), "newest date first")

	one, total, err := r.ListPaged(ctx, trip.UserID, &trip.ID, domain.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, one, 3)

	byTrip, err := r.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, byTrip, 3)
	assert.Equal(t, 1, byTrip[0].Date.Day(), "ListByTripID is in date order")
}

func TestLogSheetRepo_Update(t *testing.T) {
	tx := newTestTx(t)
	trip := createTrip(t, tx)
	r := repo.NewLogSheetRepo(tx)
	ctx := context.Background()

	created, err := r.Create(ctx, sheetFixture(trip.ID, 1))
	require.NoError(t, err)

	created.Notes = "weigh station delay"
	created.EndingOdometer = 1600
	updated, err := r.Update(ctx, trip.UserID, created)
	require.NoError(t, err)
	assert.Equal(t, "weigh station delay", updated.Notes)
	assert.InDelta(t, 1600.0, updated.EndingOdometer, 1e-9)

	_, err = r.Update(ctx, uuid.New(), created)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
