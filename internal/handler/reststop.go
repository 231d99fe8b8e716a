package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// RestStopRequest is the body of POST and PUT /api/trips/{id}/stops.
type RestStopRequest struct {
	Name             string              `json:"name"`
	Location         string              `json:"location"`
	Coordinates      *domain.Coordinates `json:"coordinates"`
	Type             domain.StopType     `json:"type"`
	Amenities        map[string]any      `json:"amenities"`
	Odometer         float64             `json:"odometer"`
	PlannedArrival   time.Time           `json:"planned_arrival"`
	PlannedDeparture time.Time           `json:"planned_departure"`
}

// RestStop is the wire form of domain.RestStop.
type RestStop struct {
	ID               uuid.UUID           `json:"id"`
	TripID           uuid.UUID           `json:"trip_id"`
	Name             string              `json:"name"`
	Location         string              `json:"location"`
	Coordinates      *domain.Coordinates `json:"coordinates"`
	Type             domain.StopType     `json:"type"`
	Amenities        map[string]any      `json:"amenities"`
	Odometer         float64             `json:"odometer"`
	PlannedArrival   time.Time           `json:"planned_arrival"`
	PlannedDeparture time.Time           `json:"planned_departure"`
	DurationHours    float64             `json:"duration_hours"`
}

// RestStopList is the body of GET /api/trips/{id}/stops. Stops are ordered
// by planned arrival and not paginated.
type RestStopList struct {
	Data []RestStop `json:"data"`
}

// ListRestStops handles GET /api/trips/{id}/stops.
func (s *Server) ListRestStops(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	stops, err := s.stops.ListByTripID(r.Context(), userID, tripID)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	out := RestStopList{Data: make([]RestStop, 0, len(stops))}
	for _, st := range stops {
		out.Data = append(out.Data, restStopToResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateRestStop handles POST /api/trips/{id}/stops.
func (s *Server) CreateRestStop(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	tripID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body RestStopRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	created, err := s.stops.Create(r.Context(), userID, requestToRestStop(uuid.Nil, tripID, body))
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, restStopToResponse(created))
}

// GetRestStop handles GET /api/trips/{id}/stops/{stopId}.
func (s *Server) GetRestStop(w http.ResponseWriter, r *http.Request) {
	userID, tripID, stopID, ok := stopPath(w, r)
	if !ok {
		return
	}

	stop, err := s.stops.GetByID(r.Context(), userID, tripID, stopID)
	if err != nil {
		writeError(w, r, err, "rest stop not found")
		return
	}
	writeJSON(w, http.StatusOK, restStopToResponse(stop))
}

// UpdateRestStop handles PUT /api/trips/{id}/stops/{stopId}.
func (s *Server) UpdateRestStop(w http.ResponseWriter, r *http.Request) {
	userID, tripID, stopID, ok := stopPath(w, r)
	if !ok {
		return
	}
	var body RestStopRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	updated, err := s.stops.Update(r.Context(), userID, requestToRestStop(stopID, tripID, body))
	if err != nil {
		writeError(w, r, err, "rest stop not found")
		return
	}
	writeJSON(w, http.StatusOK, restStopToResponse(updated))
}

// DeleteRestStop handles DELETE /api/trips/{id}/stops/{stopId}.
func (s *Server) DeleteRestStop(w http.ResponseWriter, r *http.Request) {
	userID, tripID, stopID, ok := stopPath(w, r)
	if !ok {
		return
	}

	if err := s.stops.Delete(r.Context(), userID, tripID, stopID); err != nil {
		writeError(w, r, err, "rest stop not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func stopPath(w http.ResponseWriter, r *http.Request) (userID, tripID, stopID uuid.UUID, ok bool) {
	if userID, ok = currentUser(w, r); !ok {
		return
	}
	if tripID, ok = pathUUID(w, r, "id"); !ok {
		return
	}
	stopID, ok = pathUUID(w, r, "stopId")
	return
}

func requestToRestStop(id, tripID uuid.UUID, body RestStopRequest) domain.RestStop {
	return domain.RestStop{
		ID:               id,
		TripID:           tripID,
		Name:             body.Name,
		Location:         body.Location,
		Coordinates:      body.Coordinates,
		Type:             body.Type,
		Amenities:        body.Amenities,
		Odometer:         body.Odometer,
		PlannedArrival:   body.PlannedArrival,
		PlannedDeparture: body.PlannedDeparture,
	}
}

func restStopToResponse(st domain.RestStop) RestStop {
	amenities := st.Amenities
	if amenities == nil {
		amenities = map[string]any{}
	}
	return RestStop{
		ID:               st.ID,
		TripID:           st.TripID,
		Name:             st.Name,
		Location:         st.Location,
		Coordinates:      st.Coordinates,
		Type:             st.Type,
		Amenities:        amenities,
		Odometer:         st.Odometer,
		PlannedArrival:   st.PlannedArrival,
		PlannedDeparture: st.PlannedDeparture,
		DurationHours:    st.DurationHours(),
	}
}
