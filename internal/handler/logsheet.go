package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/loggrid"
)

// LogSheetRequest is the body of POST and PUT /api/logs.
type LogSheetRequest struct {
	TripID           uuid.UUID          `json:"trip_id"`
	Date             openapi_types.Date `json:"date"`
	TotalMiles       float64            `json:"total_miles"`
	StartingOdometer float64            `json:"starting_odometer"`
	EndingOdometer   float64            `json:"ending_odometer"`
	CarrierName      string             `json:"carrier_name"`
	CarrierAddress   string             `json:"carrier_address"`
	DriverSignature  string             `json:"driver_signature"`
	Notes            string             `json:"notes"`
	LogData          json.RawMessage    `json:"log_data"`
}

// LogSheet is the wire form of domain.LogSheet. Statuses and totals are
// present only on reads that load the sheet's statuses.
type LogSheet struct {
	ID                uuid.UUID          `json:"id"`
	TripID            uuid.UUID          `json:"trip_id"`
	Date              openapi_types.Date `json:"date"`
	TotalMiles        float64            `json:"total_miles"`
	StartingOdometer  float64            `json:"starting_odometer"`
	EndingOdometer    float64            `json:"ending_odometer"`
	CarrierName       string             `json:"carrier_name"`
	CarrierAddress    string             `json:"carrier_address"`
	DriverSignature   string             `json:"driver_signature"`
	Notes             string             `json:"notes"`
	LogData           json.RawMessage    `json:"log_data"`
	DutyStatuses      *[]DutyStatus      `json:"duty_statuses,omitempty"`
	TotalDrivingHours *float64           `json:"total_driving_hours,omitempty"`
	TotalOnDutyHours  *float64           `json:"total_on_duty_hours,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// GenerateLogsRequest is the body of POST /api/logs/generate.
type GenerateLogsRequest struct {
	TripID *uuid.UUID `json:"trip_id"`
}

// LogSheetList is an unpaginated list of sheets.
type LogSheetList struct {
	Data []LogSheet `json:"data"`
}

// GridResponse is the JSON form of GET /api/logs/{id}/grid.
type GridResponse struct {
	GridImage   string `json:"grid_image"`
	ContentType string `json:"content_type"`
}

// ListLogSheets handles GET /api/logs. ?trip_id= narrows the list to one trip.
func (s *Server) ListLogSheets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tripID, ok := queryUUID(w, r, "trip_id")
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	sheets, total, err := s.logs.List(r.Context(), userID, tripID, params)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(sheets, logSheetToResponse, params, total))
}

// CreateLogSheet handles POST /api/logs.
func (s *Server) CreateLogSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body LogSheetRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.logs.Create(r.Context(), userID, requestToLogSheet(uuid.Nil, body))
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, logSheetToResponse(created))
}

// GetLogSheet handles GET /api/logs/{id}. The response embeds the sheet's statuses.
func (s *Server) GetLogSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	sheet, err := s.logs.GetByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err, "log sheet not found")
		return
	}
	writeJSON(w, http.StatusOK, logSheetToResponse(sheet))
}

// UpdateLogSheet handles PUT /api/logs/{id}.
func (s *Server) UpdateLogSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body LogSheetRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.logs.Update(r.Context(), userID, requestToLogSheet(id, body))
	if err != nil {
		writeError(w, r, err, "log sheet not found")
		return
	}
	writeJSON(w, http.StatusOK, logSheetToResponse(updated))
}

// DeleteLogSheet handles DELETE /api/logs/{id}. Its statuses go with it.
func (s *Server) DeleteLogSheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.logs.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err, "log sheet not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateLogs handles POST /api/logs/generate. It rebuilds the trip's
// sheets from its rest stops, replacing any existing ones.
func (s *Server) GenerateLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var body GenerateLogsRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.TripID == nil {
		requestError(w, http.StatusUnprocessableEntity, "validation_error", "trip_id is required")
		return
	}

	sheets, err := s.logs.Generate(r.Context(), userID, *body.TripID)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	out := LogSheetList{Data: make([]LogSheet, 0, len(sheets))}
	for _, sh := range sheets {
		out.Data = append(out.Data, logSheetToResponse(sh))
	}
	writeJSON(w, http.StatusCreated, out)
}

// GetLogGrid handles GET /api/logs/{id}/grid. The PNG is returned base64
// encoded in JSON, or raw with ?format=png.
func (s *Server) GetLogGrid(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	img, err := s.logs.Grid(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err, "log sheet not found")
		return
	}
	if r.URL.Query().Get("format") == "png" {
		w.Header().Set("Content-Type", loggrid.ContentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(img)
		return
	}
	writeJSON(w, http.StatusOK, GridResponse{
		GridImage:   base64.StdEncoding.EncodeToString(img),
		ContentType: loggrid.ContentType,
	})
}

// --- mapping helpers --------------------------------------------------------

func requestToLogSheet(id uuid.UUID, body LogSheetRequest) domain.LogSheet {
	return domain.LogSheet{
		ID:               id,
		TripID:           body.TripID,
		Date:             body.Date.Time,
		TotalMiles:       body.TotalMiles,
		StartingOdometer: body.StartingOdometer,
		EndingOdometer:   body.EndingOdometer,
		CarrierName:      body.CarrierName,
		CarrierAddress:   body.CarrierAddress,
		DriverSignature:  body.DriverSignature,
		Notes:            body.Notes,
		LogData:          body.LogData,
	}
}

func logSheetToResponse(l domain.LogSheet) LogSheet {
	logData := l.LogData
	if len(logData) == 0 {
		logData = json.RawMessage("{}")
	}
	out := LogSheet{
		ID:               l.ID,
		TripID:           l.TripID,
		Date:             openapi_types.Date{Time: l.Date},
		TotalMiles:       l.TotalMiles,
		StartingOdometer: l.StartingOdometer,
		EndingOdometer:   l.EndingOdometer,
		CarrierName:      l.CarrierName,
		CarrierAddress:   l.CarrierAddress,
		DriverSignature:  l.DriverSignature,
		Notes:            l.Notes,
		LogData:          logData,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if l.DutyStatuses != nil {
		statuses := make([]DutyStatus, len(l.DutyStatuses))
		for i, ds := range l.DutyStatuses {
			statuses[i] = dutyStatusToResponse(ds)
		}
		driving, onDuty := l.TotalDrivingHours(), l.TotalOnDutyHours()
		out.DutyStatuses = &statuses
		out.TotalDrivingHours = &driving
		out.TotalOnDutyHours = &onDuty
	}
	return out
}
