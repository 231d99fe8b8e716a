package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but belongs to another user.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation.
// Handlers map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write violates a uniqueness rule
// (a taken username, a second log sheet for the same trip and date).
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller may see a resource but not modify it
// through the requested relation, e.g. attaching a status to another user's sheet.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized is returned for bad credentials or invalid tokens.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRouting is the parent of every routing-service failure.
var ErrRouting = errors.New("routing error")

// ErrGeocoding means a location name could not be resolved to coordinates.
var ErrGeocoding = fmt.Errorf("%w: geocoding failed", ErrRouting)

// ErrRouteCalculation means the routing service could not produce a route.
var ErrRouteCalculation = fmt.Errorf("%w: route calculation failed", ErrRouting)

// ErrRateLimited means the hourly routing request budget is exhausted.
var ErrRateLimited = fmt.Errorf("%w: rate limit exceeded, try again later", ErrRouting)
