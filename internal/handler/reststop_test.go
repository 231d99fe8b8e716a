package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/handler"
)

type mockRestStopServicer struct {
	create       func(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error)
	getByID      func(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.RestStop, error)
	listByTripID func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.RestStop, error)
	update       func(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error)
	delete       func(ctx context.Context, userID, tripID, stopID uuid.UUID) error
}

func (m *mockRestStopServicer) Create(ctx context.Context, userID uuid.UUID, s domain.RestStop) (domain.RestStop, error) {
	return m.create(ctx, userID, s)
}
func (m *mockRestStopServicer) GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.RestStop, error) {
	return m.getByID(ctx, userID, tripID, stopID)
}
func (m *mockRestStopServicer) ListByTripID(ctx context.Context, userID, tripID uuid.UUID) ([]domain.RestStop, error) {
	return m.listByTripID(ctx, userID, tripID)
}
func (m *mockRestStopServicer) Update(ctx context.Context, userID uuid.UUID, s domain.RestStop) (domain.RestStop, error) {
	return m.update(ctx, userID, s)
}
func (m *mockRestStopServicer) Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	return m.delete(ctx, userID, tripID, stopID)
}

var _ handler.RestStopServicer = (*mockRestStopServicer)(nil)

func restStopFixture(tripID uuid.UUID) domain.RestStop {
	arrive := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	return domain.RestStop{
		ID:               uuid.New(),
		TripID:           tripID,
		Name:             "Required Rest Stop",
		Location:         "Mile 550",
		Type:             domain.StopRest,
		Odometer:         550,
		PlannedArrival:   arrive,
		PlannedDeparture: arrive.Add(10 * time.Hour),
	}
}

func stopsPath(tripID uuid.UUID) string { return "/api/trips/" + tripID.String() + "/stops" }

func TestCreateRestStop_Success(t *testing.T) {
	tripID := uuid.New()
	want := restStopFixture(tripID)
	svc := &mockRestStopServicer{
		create: func(_ context.Context, userID uuid.UUID, s domain.RestStop) (domain.RestStop, error) {
			assert.Equal(t, driverID, userID)
			assert.Equal(t, tripID, s.TripID, "trip comes from the path")
			assert.Equal(t, domain.StopRest, s.Type)
			return want, nil
		},
	}

	rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodPost, stopsPath(tripID), handler.RestStopRequest{
		Name:             want.Name,
		Type:             domain.StopRest,
		Odometer:         550,
		PlannedArrival:   want.PlannedArrival,
		PlannedDeparture: want.PlannedDeparture,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[handler.RestStop](t, rec)
	assert.InDelta(t, 10.0, got.DurationHours, 1e-9)
	assert.NotNil(t, got.Amenities, "amenities encode as an object")
	assert.Nil(t, got.Coordinates)
}

func TestCreateRestStop_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"other user's trip", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"departure before arrival", fmt.Errorf("%w: planned_departure must not be before planned_arrival", domain.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockRestStopServicer{
				create: func(_ context.Context, _ uuid.UUID, _ domain.RestStop) (domain.RestStop, error) {
					return domain.RestStop{}, tt.err
				},
			}
			rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodPost, stopsPath(uuid.New()), handler.RestStopRequest{})
			assertError(t, rec, tt.status, tt.code)
		})
	}
}

func TestListRestStops(t *testing.T) {
	tripID := uuid.New()
	svc := &mockRestStopServicer{
		listByTripID: func(_ context.Context, _, id uuid.UUID) ([]domain.RestStop, error) {
			assert.Equal(t, tripID, id)
			return []domain.RestStop{restStopFixture(tripID), restStopFixture(tripID)}, nil
		},
	}

	rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodGet, stopsPath(tripID), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[handler.RestStopList](t, rec).Data, 2)
}

func TestGetRestStop_NotFound(t *testing.T) {
	svc := &mockRestStopServicer{
		getByID: func(_ context.Context, _, _, _ uuid.UUID) (domain.RestStop, error) {
			return domain.RestStop{}, domain.ErrNotFound
		},
	}

	rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodGet, stopsPath(uuid.New())+"/"+uuid.NewString(), nil)

	body := assertError(t, rec, http.StatusNotFound, "not_found")
	assert.Equal(t, "rest stop not found", body.Error.Message)
}

func TestGetRestStop_BadStopID(t *testing.T) {
	rec := newAPI(t, handler.Services{Stops: &mockRestStopServicer{}}).do(http.MethodGet, stopsPath(uuid.New())+"/nope", nil)
	assertError(t, rec, http.StatusBadRequest, "invalid_parameter")
}

func TestUpdateRestStop_UsesPathIDs(t *testing.T) {
	tripID, stopID := uuid.New(), uuid.New()
	svc := &mockRestStopServicer{
		update: func(_ context.Context, _ uuid.UUID, s domain.RestStop) (domain.RestStop, error) {
			assert.Equal(t, tripID, s.TripID)
			assert.Equal(t, stopID, s.ID)
			return s, nil
		},
	}

	rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodPut, stopsPath(tripID)+"/"+stopID.String(),
		handler.RestStopRequest{Name: "Fuel", Type: domain.StopFuel, Amenities: map[string]any{"diesel": true}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[handler.RestStop](t, rec).Amenities["diesel"])
}

func TestDeleteRestStop(t *testing.T) {
	svc := &mockRestStopServicer{
		delete: func(_ context.Context, _, _, _ uuid.UUID) error { return nil },
	}

	rec := newAPI(t, handler.Services{Stops: svc}).do(http.MethodDelete, stopsPath(uuid.New())+"/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
