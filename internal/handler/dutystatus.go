package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// DutyStatusRequest is the body of POST and PUT /api/duty-status.
// Times are "HH:MM"; "24:00" ends a status at midnight.
type DutyStatusRequest struct {
	LogSheetID uuid.UUID     `json:"log_sheet_id"`
	Status     domain.Status `json:"status"`
	StartTime  string        `json:"start_time"`
	EndTime    string        `json:"end_time"`
	Location   string        `json:"location"`
	Odometer   float64       `json:"odometer"`
	Remarks    string        `json:"remarks"`
}

// DutyStatus is the wire form of domain.DutyStatus.
type DutyStatus struct {
	ID            uuid.UUID     `json:"id"`
	LogSheetID    uuid.UUID     `json:"log_sheet_id"`
	Status        domain.Status `json:"status"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	DurationHours float64       `json:"duration_hours"`
	Location      string        `json:"location"`
	Odometer      float64       `json:"odometer"`
	Remarks       string        `json:"remarks"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ListDutyStatuses handles GET /api/duty-status. ?log_sheet_id= narrows the list.
func (s *Server) ListDutyStatuses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	sheetID, ok := queryUUID(w, r, "log_sheet_id")
	if !ok {
		return
	}
	params, ok := pagination(w, r)
	if !ok {
		return
	}

	statuses, total, err := s.statuses.List(r.Context(), userID, sheetID, params)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(statuses, dutyStatusToResponse, params, total))
}

// CreateDutyStatus handles POST /api/duty-status.
func (s *Server) CreateDutyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	ds, ok := decodeDutyStatus(w, r, uuid.Nil)
	if !ok {
		return
	}

	created, err := s.statuses.Create(r.Context(), userID, ds)
	if err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, dutyStatusToResponse(created))
}

// GetDutyStatus handles GET /api/duty-status/{id}.
func (s *Server) GetDutyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	ds, err := s.statuses.GetByID(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err, "duty status not found")
		return
	}
	writeJSON(w, http.StatusOK, dutyStatusToResponse(ds))
}

// UpdateDutyStatus handles PUT /api/duty-status/{id}.
func (s *Server) UpdateDutyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	ds, ok := decodeDutyStatus(w, r, id)
	if !ok {
		return
	}

	updated, err := s.statuses.Update(r.Context(), userID, ds)
	if err != nil {
		writeError(w, r, err, "duty status not found")
		return
	}
	writeJSON(w, http.StatusOK, dutyStatusToResponse(updated))
}

// DeleteDutyStatus handles DELETE /api/duty-status/{id}.
func (s *Server) DeleteDutyStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.statuses.Delete(r.Context(), userID, id); err != nil {
		writeError(w, r, err, "duty status not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDutyStatus decodes the body and parses its clock times.
func decodeDutyStatus(w http.ResponseWriter, r *http.Request, id uuid.UUID) (domain.DutyStatus, bool) {
	var body DutyStatusRequest
	if !decodeJSON(w, r, &body) {
		return domain.DutyStatus{}, false
	}
	start, err := domain.ParseClockTime(body.StartTime)
	if err != nil {
		writeError(w, r, err, "")
		return domain.DutyStatus{}, false
	}
	end, err := domain.ParseClockTime(body.EndTime)
	if err != nil {
		writeError(w, r, err, "")
		return domain.DutyStatus{}, false
	}
	return domain.DutyStatus{
		ID:         id,
		LogSheetID: body.LogSheetID,
		Status:     body.Status,
		StartTime:  start,
		EndTime:    end,
		Location:   body.Location,
		Odometer:   body.Odometer,
		Remarks:    body.Remarks,
	}, true
}

func dutyStatusToResponse(ds domain.DutyStatus) DutyStatus {
	return DutyStatus{
		ID:            ds.ID,
		LogSheetID:    ds.LogSheetID,
		Status:        ds.Status,
		StartTime:     ds.StartTime.String(),
		EndTime:       ds.EndTime.String(),
		DurationHours: ds.DurationHours(),
		Location:      ds.Location,
		Odometer:      ds.Odometer,
		Remarks:       ds.Remarks,
		CreatedAt:     ds.CreatedAt,
	}
}
