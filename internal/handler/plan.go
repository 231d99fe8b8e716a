package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// PlanRequest is the optional body of POST /api/trips/{id}/plan.
// A missing start_time plans from now.
type PlanRequest struct {
	StartTime *time.Time `json:"start_time"`
}

// RouteLeg is one leg of a planned route.
type RouteLeg struct {
	DistanceMiles float64         `json:"distance_miles"`
	DurationHours float64         `json:"duration_hours"`
	Geometry      json.RawMessage `json:"geometry,omitempty"`
}

// RoutePoints holds the geocoded trip locations.
type RoutePoints struct {
	Current domain.Coordinate `json:"current"`
	Pickup  domain.Coordinate `json:"pickup"`
	Dropoff domain.Coordinate `json:"dropoff"`
}

// Route summarises the routing result.
type Route struct {
	DistanceMiles float64     `json:"distance_miles"`
	DurationHours float64     `json:"duration_hours"`
	Coordinates   RoutePoints `json:"coordinates"`
	Legs          []RouteLeg  `json:"legs"`
}

// PlanResponse is the body of a successful plan.
type PlanResponse struct {
	Trip  Trip       `json:"trip"`
	Route Route      `json:"route"`
	Stops []RestStop `json:"rest_stops"`
	Logs  []LogSheet `json:"log_sheets"`
}

// PlanTrip handles POST /api/trips/{id}/plan. It routes the trip, lays out
// rest and fuel stops under the hours-of-service rules and replaces the
// trip's stops and log sheets with the result.
func (s *Server) PlanTrip(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body PlanRequest
	if !decodeOptionalJSON(w, r, &body) {
		return
	}
	var start time.Time
	if body.StartTime != nil {
		start = *body.StartTime
	}

	plan, err := s.plans.Plan(r.Context(), userID, id, start)
	if err != nil {
		writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, planToResponse(plan))
}

func planToResponse(p domain.Plan) PlanResponse {
	out := PlanResponse{
		Trip: tripToResponse(p.Trip),
		Route: Route{
			DistanceMiles: p.Route.Miles(),
			DurationHours: p.Route.Hours(),
			Coordinates: RoutePoints{
				Current: p.Route.Origin,
				Pickup:  p.Route.Pickup,
				Dropoff: p.Route.Dropoff,
			},
			Legs: make([]RouteLeg, len(p.Route.Legs)),
		},
		Stops: make([]RestStop, len(p.Stops)),
		Logs:  make([]LogSheet, len(p.Logs)),
	}
	for i, l := range p.Route.Legs {
		out.Route.Legs[i] = RouteLeg{DistanceMiles: l.Miles(), DurationHours: l.Hours(), Geometry: l.Geometry}
	}
	for i, st := range p.Stops {
		out.Stops[i] = restStopToResponse(st)
	}
	for i, l := range p.Logs {
		out.Logs[i] = logSheetToResponse(l)
	}
	return out
}
