package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthMux(t *testing.T) (*HealthChecker, *http.ServeMux) {
	t.Helper()

	sc := NewServerContext(Config{})
	h := NewHealthChecker(sc, "test")
	mux := http.NewServeMux()
	h.Register(mux)
	return h, mux
}

func TestLivenessAlwaysOK(t *testing.T) {
	_, mux := newHealthMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestReadinessTracksState(t *testing.T) {
	h, mux := newHealthMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.SetReady(false)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDetailedHealth(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	h, mux := newHealthMux(t)
	h.SetReady(true)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))

	assert.Equal(t, "meetingagent", detail["service"])
	assert.Equal(t, "test", detail["version"])
	assert.Equal(t, true, detail["ready"])
	assert.Equal(t, false, detail["api_key_configured"])
	assert.Equal(t, float64(0), detail["active_sessions"])
}
