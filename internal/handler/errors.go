package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorMapping pairs a sentinel with its status and code. Order matters:
// ErrRateLimited wraps ErrRouting and must be matched first.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{domain.ErrRouting, http.StatusBadRequest, "routing_error"},
}

// writeError maps err onto a status code and JSON body. notFound is the
// message used for domain.ErrNotFound (e.g. "trip not found") because the
// handler is the layer that knows what was being looked up. Unmapped errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := unwrapMessage(err, m.err)
		if m.err == domain.ErrNotFound && notFound != "" {
			msg = notFound
		}
		writeJSON(w, m.status, ErrorResponse{Error: ErrorDetail{Code: m.code, Message: msg}})
		return
	}
	slog.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
		Code:    "internal_error",
		Message: "an unexpected error occurred",
	}})
}

// requestError reports a request rejected before reaching the service layer
// (e.g. malformed body or parameter).
func requestError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// unwrapMessage extracts the human-readable part after the sentinel.
// e.g. "service.TripService.Create: validation error: pickup_location is required"
// → "pickup_location is required". Without detail the sentinel text is used.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error()
	i := strings.LastIndex(msg, marker+": ")
	if i < 0 {
		return marker
	}
	return msg[i+len(marker)+2:]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// decodeJSON decodes the request body into dst and writes the error response
// itself when it cannot. It reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, true)
}

// decodeOptionalJSON is decodeJSON for endpoints where the body may be
// omitted. An empty body leaves dst untouched.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, required bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (!required && errors.Is(err, io.EOF)) {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		requestError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
	case errors.Is(err, io.EOF):
		requestError(w, http.StatusUnprocessableEntity, "validation_error", "request body is required")
	default:
		requestError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request body: "+err.Error())
	}
	return false
}
