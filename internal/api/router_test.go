package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdarBahar/MyTrip-sub001/internal/adapters/routing"
)

func testRouter() http.Handler {
	provider := routing.NewMockProvider(nil)
	provider.Haversine = true
	return NewRouter(provider, nil, nil)
}

func TestRouterHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouterGeneratesRequestID(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	id := rec.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Len(t, id, 16)
}

func TestRouterKeepsInboundRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-abc")

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, "client-abc", rec.Header().Get("X-Request-ID"))
}

func TestRouterOptimizeWired(t *testing.T) {
	body := `{
		"meta": {"objective": "time", "vehicle_profile": "car"},
		"data": {"locations": [
			{"id": "s", "lat": 0, "lon": 0, "type": "START"},
			{"id": "a", "lat": 0, "lon": 1, "type": "STOP"},
			{"id": "e", "lat": 0, "lon": 2, "type": "END"}
		]}
	}`

	req := httptest.NewRequest(http.MethodPost, "/routes/optimize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ordered"`)
}

func TestRouterInsertStopWired(t *testing.T) {
	body := `{
		"current_route": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 10}],
		"new_stop": {"lat": 0, "lon": 5},
		"profile": "car",
		"optimize_for": "time"
	}`

	req := httptest.NewRequest(http.MethodPost, "/routes/insert-stop", strings.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"insertion_position":1`)
}

func TestRouterTripsWithoutRepo(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/trips/optimize-day", strings.NewReader(`{"trip_id": "t", "day_id": "d", "meta": {}}`))
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
