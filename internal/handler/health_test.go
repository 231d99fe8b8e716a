package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/handler"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"} without credentials.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	a := newAPI(t, handler.Services{DB: pingerFunc(func(context.Context) error { return nil })})

	rec := a.anonymous(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[handler.HealthResponse](t, rec).Status)
}

func TestGetHealth_DatabaseDown(t *testing.T) {
	a := newAPI(t, handler.Services{DB: pingerFunc(func(context.Context) error { return errors.New("refused") })})

	rec := a.anonymous(http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode[handler.HealthResponse](t, rec).Status)
}

func TestDocs(t *testing.T) {
	a := newAPI(t, handler.Services{})

	rec := a.anonymous(http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi: 3.0")

	rec = a.anonymous(http.MethodGet, "/docs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `url: "/openapi.yaml"`)
}
