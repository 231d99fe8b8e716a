// Package handler implements the HTTP handlers for the HaulTrackr API.
// Handlers decode requests, call a service and encode the result; they hold
// no business rules. Methods are split into resource files (trip.go,
// logsheet.go, ...) but all share the Server struct and its dependencies.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bridgitkanini/haultrackrbackend/internal/auth"
	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// AuthServicer registers users and issues tokens.
type AuthServicer interface {
	Register(ctx context.Context, username, email, password string) (domain.User, error)
	Login(ctx context.Context, username, password string) (auth.TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
}

// TripServicer defines the business operations the trip handler depends on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Planner plans a trip's stops and logs.
type Planner interface {
	Plan(ctx context.Context, userID, tripID uuid.UUID, start time.Time) (domain.Plan, error)
}

// RestStopServicer defines the operations on a trip's stops.
type RestStopServicer interface {
	Create(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error)
	GetByID(ctx context.Context, userID, tripID, stopID uuid.UUID) (domain.RestStop, error)
	ListByTripID(ctx context.Context, userID, tripID uuid.UUID) ([]domain.RestStop, error)
	Update(ctx context.Context, userID uuid.UUID, stop domain.RestStop) (domain.RestStop, error)
	Delete(ctx context.Context, userID, tripID, stopID uuid.UUID) error
}

// LogSheetServicer defines log sheet CRUD and its derived actions.
type LogSheetServicer interface {
	Create(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.LogSheet, error)
	List(ctx context.Context, userID uuid.UUID, tripID *uuid.UUID, p domain.PaginationParams) ([]domain.LogSheet, int64, error)
	Update(ctx context.Context, userID uuid.UUID, sheet domain.LogSheet) (domain.LogSheet, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Generate(ctx context.Context, userID, tripID uuid.UUID) ([]domain.LogSheet, error)
	Grid(ctx context.Context, userID, id uuid.UUID) ([]byte, error)
	Export(ctx context.Context, userID, tripID uuid.UUID) ([]domain.ExportRow, error)
}

// DutyStatusServicer defines duty status CRUD.
type DutyStatusServicer interface {
	Create(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.DutyStatus, error)
	List(ctx context.Context, userID uuid.UUID, logSheetID *uuid.UUID, p domain.PaginationParams) ([]domain.DutyStatus, int64, error)
	Update(ctx context.Context, userID uuid.UUID, ds domain.DutyStatus) (domain.DutyStatus, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Pinger reports whether a dependency is reachable. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the Server's dependencies. Nil services leave their
// routes unregistered, which keeps focused handler tests small.
type Services struct {
	Auth     AuthServicer
	Trips    TripServicer
	Plans    Planner
	Stops    RestStopServicer
	Logs     LogSheetServicer
	Statuses DutyStatusServicer
	DB       Pinger
}

// Server serves every API endpoint.
type Server struct {
	auth     AuthServicer
	trips    TripServicer
	plans    Planner
	stops    RestStopServicer
	logs     LogSheetServicer
	statuses DutyStatusServicer
	db       Pinger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(s Services) *Server {
	return &Server{
		auth:     s.Auth,
		trips:    s.Trips,
		plans:    s.Plans,
		stops:    s.Stops,
		logs:     s.Logs,
		statuses: s.Statuses,
		db:       s.DB,
	}
}

// Routes returns the API router. authenticate guards every /api route
// except registration and token issuance.
func (s *Server) Routes(authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", GetOpenAPI)
	r.Get("/docs", GetDocs)

	r.Route("/api", func(r chi.Router) {
		if s.auth != nil {
			r.Post("/register", s.Register)
			r.Post("/token", s.ObtainToken)
			r.Post("/token/refresh", s.RefreshToken)
		}

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			if s.trips != nil {
				r.Get("/trips", s.ListTrips)
				r.Post("/trips", s.CreateTrip)
				r.Get("/trips/{id}", s.GetTrip)
				r.Put("/trips/{id}", s.UpdateTrip)
				r.Delete("/trips/{id}", s.DeleteTrip)
			}
			if s.plans != nil {
				r.Post("/trips/{id}/plan", s.PlanTrip)
			}
			if s.stops != nil {
				r.Get("/trips/{id}/stops", s.ListRestStops)
				r.Post("/trips/{id}/stops", s.CreateRestStop)
				r.Get("/trips/{id}/stops/{stopId}", s.GetRestStop)
				r.Put("/trips/{id}/stops/{stopId}", s.UpdateRestStop)
				r.Delete("/trips/{id}/stops/{stopId}", s.DeleteRestStop)
			}
			if s.logs != nil {
				r.Get("/trips/{id}/logs/export", s.ExportLogs)
				r.Get("/logs", s.ListLogSheets)
				r.Post("/logs", s.CreateLogSheet)
				r.Post("/logs/generate", s.GenerateLogs)
				r.Get("/logs/{id}", s.GetLogSheet)
				r.Put("/logs/{id}", s.UpdateLogSheet)
				r.Delete("/logs/{id}", s.DeleteLogSheet)
				r.Get("/logs/{id}/grid", s.GetLogGrid)
			}
			if s.statuses != nil {
				r.Get("/duty-status", s.ListDutyStatuses)
				r.Post("/duty-status", s.CreateDutyStatus)
				r.Get("/duty-status/{id}", s.GetDutyStatus)
				r.Put("/duty-status/{id}", s.UpdateDutyStatus)
				r.Delete("/duty-status/{id}", s.DeleteDutyStatus)
			}
		})
	})
	return r
}
