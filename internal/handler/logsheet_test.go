package handler_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/handler"
	"github.com/bridgitkanini/haultrackrbackend/internal/loggrid"
)

type mockLogSheetServicer struct {
	create   func(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error)
	getByID  func(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error)
	list     func(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error)
	update   func(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error)
	delete   func(ctx context.Context, userID, id uuid.UUID) error
	generate func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.LogSheet, error)
	grid     func(ctx context.Context, userID, id uuid.UUID) ([]byte, error)
	export   func(ctx context.Context, userID, tripID uuid.UUID) ([]domain.ExportRow, error)
}

func (m *mockLogSheetServicer) Create(ctx context.Context, userID uuid.UUID, s domain.LogSheet) (domain.LogSheet, error) {
	return m.create(ctx, userID, s)
}
func (m *mockLogSheetServicer) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error) {
	return m.getByID(ctx, userID, id)
}
func (m *mockLogSheetServicer) List(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error) {
	return m.list(ctx, userID, tripID, p)
}
func (m *mockLogSheetServicer) Update(ctx context.Context, userID uuid.UUID, s domain.LogSheet) (domain.LogSheet, error) {
	return m.update(ctx, userID, s)
}
func (m *mockLogSheetServicer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.delete(ctx, userID, id)
}
func (m *mockLogSheetServicer) Generate(ctx context.Context, userID, tripID uuid.UUID) ([]domain.LogSheet, error) {
	return m.generate(ctx, userID, tripID)
}
func (m *mockLogSheetServicer) Grid(ctx context.Context, userID, id uuid.UUID) ([]byte, error) {
	return m.grid(ctx, userID, id)
}
func (m *mockLogSheetServicer) Export(ctx context.Context, userID, tripID uuid.UUID) ([]domain.ExportRow, error) {
	return m.export(ctx, userID, tripID)
}

var _ handler.LogSheetServicer = (*mockLogSheetServicer)(nil)

func logSheetFixture() domain.LogSheet {
	return domain.LogSheet{
		ID:               uuid.New(),
		TripID:           uuid.New(),
		Date:             time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		TotalMiles:       550,
		StartingOdometer: 0,
		EndingOdometer:   550,
		CarrierName:      "Acme Freight",
		LogData:          json.RawMessage(`{"activities":[]}`),
	}
}

func TestCreateLogSheet_Success(t *testing.T) {
	want := logSheetFixture()
	svc := &mockLogSheetServicer{
		create: func(_ context.Context, userID uuid.UUID, s domain.LogSheet) (domain.LogSheet, error) {
			assert.Equal(t, driverID, userID)
			assert.Equal(t, want.TripID, s.TripID)
			assert.True(t, want.Date.Equal(s.Date), "date parses as YYYY-MM-DD")
			assert.JSONEq(t, `{"shift":"night"}`, string(s.LogData))
			return want, nil
		},
	}

	body := fmt.Sprintf(`{"trip_id":%q,"date":"2025-03-01","ending_odometer":550,"log_data":{"shift":"night"}}`, want.TripID)
	rec := newAPI(t, handler.Services{Logs: svc}).do(http.MethodPost, "/api/logs", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"date":"2025-03-01"`)
	got := decode[handler.LogSheet](t, rec)
	assert.Nil(t, got.DutyStatuses, "statuses are not loaded on create")
	assert.Nil(t, got.TotalDrivingHours)
}

func TestCreateLogSheet_BadDate(t *testing.T) {
	rec := newAPI(t, handler.Services{Logs: &mockLogSheetServicer{}}).do(http.MethodPost, "/api/logs", `{"date":"March 1st"}`)
	assertError(t, rec, http.StatusUnprocessableEntity, "validation_error")
}

func TestCreateLogSheet_DuplicateDate(t *testing.T) {
	svc := &mockLogSheetServicer{
		create: func(_ context.Context, _ uuid.UUID, _ domain.LogSheet) (domain.LogSheet, error) {
			return domain.LogSheet{}, fmt.Errorf("%w: a log sheet already exists for this trip and date", domain.ErrConflict)
		},
	}

	rec := newAPI(t, handler.Services{Logs: svc}).do(http.MethodPost, "/api/logs", handler.LogSheetRequest{})

	assertError(t, rec, http.StatusConflict, "conflict")
}

func TestGetLogSheet_WithStatuses(t *testing.T) {
	sheet := logSheetFixture()
	sheet.DutyStatuses = []domain.DutyStatus{
		{ID: uuid.New(), Status: domain.StatusOnDuty, StartTime: 6 * 60, EndTime: 6*60 + 15},
		{ID: uuid.New(), Status: domain.StatusDriving, StartTime: 6*60 + 15, EndTime: 16 * 60},
	}
	svc := &mockLogSheetServicer{
		getByID: func(_ context.Context, _, id uuid.UUID) (domain.LogSheet, error) {
			assert.Equal(t, sheet.ID, id)
			return sheet, nil
		},
	}

	rec := newAPI(t, handler.Services{Logs: svc}).do(http.MethodGet, "/api/logs/"+sheet.ID.String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.LogSheet](t, rec)
	require.NotNil(t, got.DutyStatuses)
	require.Len(t, *got.DutyStatuses, 2)
	assert.Equal(t, "06:15", (*got.DutyStatuses)[1].StartTime)
	assert.InDelta(t, 9.75, *got.TotalDrivingHours, 1e-9)
	assert.InDelta(t, 10.0, *got.TotalOnDutyHours, 1e-9)
}

func TestListLogSheets_FilterByTrip(t *testing.T) {
	tripID := uuid.New()
	svc := &mockLogSheetServicer{
		list: func(_ context.Context, _ uuid.UUID, got *uuid.UUID, _ domain.PaginationParams) ([]domain.LogSheet, int64, error) {
			require.NotNil(t, got)
			assert.Equal(t, tripID, *got)
			return []domain.LogSheet{logSheetFixture()}, 1, nil
		},
	}
	a := newAPI(t, handler.Services{Logs: svc})

	rec := a.do(http.MethodGet, "/api/logs?trip_id="+tripID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[handler.ListResponse[handler.LogSheet]](t, rec).Pagination.Total)

	rec = a.do(http.MethodGet, "/api/logs?trip_id=nope", nil)
	assertError(t, rec, http.StatusBadRequest, "invalid_parameter")
}

func TestUpdateLogSheet_UsesPathID(t *testing.T) {
	id := uuid.New()
	svc := &mockLogSheetServicer{
		update: func(_ context.Context, _ uuid.UUID, s domain.LogSheet) (domain.LogSheet, error) {
			assert.Equal(t, id, s.ID)
			return s, nil
		},
	}

	rec := newAPI(t, handler.Services{Logs: svc}).do(http.MethodPut, "/api/logs/"+id.String(),
		`{"trip_id":"`+uuid.NewString()+`","date":"2025-03-02","notes":"late start"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[handler.LogSheet](t, rec)
	assert.Equal(t, "late start", got.Notes)
	assert.JSONEq(t, `{}`, string(got.LogData), "missing log data encodes as an empty object")
}

func TestDeleteLogSheet_NotFound(t *testing.T) {
	svc := &mockLogSheetServicer{
		delete: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}

	rec := newAPI(t, handler.Services{Logs: svc}).do(http.MethodDelete, "/api/logs/"+uuid.NewString(), nil)

	body := assertError(t, rec, http.StatusNotFound, "not_found")
	assert.Equal(t, "log sheet not found", body.Error.Message)
}

func TestGenerateLogs(t *testing.T) {
	tripID := uuid.New()
	svc := &mockLogSheetServicer{
		generate: func(_ context.Context, _, id uuid.UUID) ([]domain.LogSheet, error) {
			assert.Equal(t, tripID, id)
			return []domain.LogSheet{logSheetFixture(), logSheetFixture()}, nil
		},
	}
	a := newAPI(t, handler.Services{Logs: svc})

	rec := a.do(http.MethodPost, "/api/logs/generate", handler.GenerateLogsRequest{TripID: &tripID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, decode[handler.LogSheetList](t, rec).Data, 2)

	rec = a.do(http.MethodPost, "/api/logs/generate", `{}`)
	body := assertError(t, rec, http.StatusUnprocessableEntity, "validation_error")
	assert.Equal(t, "trip_id is required", body.Error.Message)
}

func TestGetLogGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, loggrid.Render(&buf, []domain.DutyStatus{
		{Status: domain.StatusDriving, StartTime: 8 * 60, EndTime: 12 * 60},
	}))
	img := buf.Bytes()
	svc := &mockLogSheetServicer{
		grid: func(_ context.Context, _, _ uuid.UUID) ([]byte, error) { return img, nil },
	}
	a := newAPI(t, handler.Services{Logs: svc})
	path := "/api/logs/" + uuid.NewString() + "/grid"

	t.Run("json", func(t *testing.T) {
		rec := a.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[handler.GridResponse](t, rec)
		assert.Equal(t, "image/png", got.ContentType)
		raw, err := base64.StdEncoding.DecodeString(got.GridImage)
		require.NoError(t, err)
		assert.Equal(t, img, raw)
	})

	t.Run("png", func(t *testing.T) {
		rec := a.do(http.MethodGet, path+"?format=png", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		decoded, err := png.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, loggrid.Width, decoded.Bounds().Dx())
	})
}
