package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/middleware"
)

// Pagination is the pagination block of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// ListResponse wraps one page of resources.
type ListResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func newListResponse[S, T any](items []S, conv func(S) T, p domain.PaginationParams, total int64) ListResponse[T] {
	data := make([]T, len(items))
	for i, it := range items {
		data[i] = conv(it)
	}
	return ListResponse[T]{Data: data, Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: total}}
}

// pathUUID binds a UUID path parameter the way generated oapi-codegen
// wrappers do. On failure it writes a 400 and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		requestError(w, http.StatusBadRequest, "invalid_parameter", "invalid format for parameter "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID binds an optional UUID query parameter.
func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	var id *uuid.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &id); err != nil {
		requestError(w, http.StatusBadRequest, "invalid_parameter", "invalid format for parameter "+name)
		return nil, false
	}
	return id, true
}

// pagination binds ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		requestError(w, http.StatusBadRequest, "invalid_parameter", "invalid format for parameter page")
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		requestError(w, http.StatusBadRequest, "invalid_parameter", "invalid format for parameter limit")
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// currentUser returns the caller's ID. Routes using it sit behind the
// authenticator, so a missing user is a wiring bug reported as 401.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	u, ok := middleware.UserFrom(r.Context())
	if !ok {
		requestError(w, http.StatusUnauthorized, "unauthorized", "authentication credentials were not provided")
		return uuid.Nil, false
	}
	return u.ID, true
}
