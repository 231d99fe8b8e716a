package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgitkanini/haultrackrbackend/internal/auth"
	"github.com/bridgitkanini/haultrackrbackend/internal/domain"
	"github.com/bridgitkanini/haultrackrbackend/internal/handler"
	"github.com/bridgitkanini/haultrackrbackend/internal/middleware"
)

var (
	driverID = uuid.MustParse("6f1c2a52-5d1b-4c43-9b6a-3f9a3c2b8e01")
	tokens   = auth.NewTokens("handler-test-secret", time.Minute, time.Hour)
)

// api wires a Server with the given services behind the real authenticator.
// This mirrors how main.go wires it in production.
type api struct {
	t      *testing.T
	h      http.Handler
	access string
}

func newAPI(t *testing.T, svcs handler.Services) *api {
	t.Helper()
	pair, err := tokens.Pair(domain.User{ID: driverID, Username: "trucker"})
	require.NoError(t, err)
	return &api{t: t, h: handler.NewServer(svcs).Routes(middleware.NewAuthenticator(tokens)), access: pair.Access}
}

// do sends an authenticated request. A nil body sends none; a string is sent verbatim.
func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, requestBody(a.t, body))
	req.Header.Set("Authorization", "Bearer "+a.access)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

// anonymous sends a request without credentials.
func (a *api) anonymous(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, requestBody(a.t, body))
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func requestBody(t *testing.T, body any) io.Reader {
	t.Helper()
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return bytes.NewBufferString(b)
	default:
		return jsonBody(t, b)
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// assertError checks the status and the stable error code of an error response.
func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) handler.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	body := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, code, body.Error.Code)
	return body
}
