package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuestRouter(t *testing.T) (*chi.Mux, *guestcount.Sessions) {
	t.Helper()
	sessions := guestcount.NewSessions(500, nil, zerolog.Nop())
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	h := NewGuestController(sessions, metrics)

	r := chi.NewRouter()
	r.Get("/sessions/{sessionID}/guest-count", h.Get)
	r.Put("/sessions/{sessionID}/guest-count", h.Set)
	r.Post("/sessions/{sessionID}/guest-count/lock", h.Lock)
	return r, sessions
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, GuestCountResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp GuestCountResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return rec, resp
}

func TestGuestController_SetAndGet(t *testing.T) {
	r, _ := newGuestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPut, "/sessions/s1/guest-count", SetGuestCountRequest{Count: 120})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120, resp.Value)
	require.NotNil(t, resp.Changed)
	assert.True(t, *resp.Changed)

	rec, resp = doJSON(t, r, http.MethodGet, "/sessions/s1/guest-count", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120, resp.Value)
	assert.False(t, resp.Locked)
}

func TestGuestController_SetClampsToMax(t *testing.T) {
	r, _ := newGuestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPut, "/sessions/s1/guest-count", SetGuestCountRequest{Count: 9000})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, resp.Value)
}

func TestGuestController_LockFreezesValue(t *testing.T) {
	r, _ := newGuestRouter(t)

	rec, resp := doJSON(t, r, http.MethodPost, "/sessions/s1/guest-count/lock", LockGuestCountRequest{Count: 150, Reason: "venue"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Locked)
	assert.Equal(t, []string{"venue"}, resp.LockedReasons)

	// Later writes report changed=false and leave the value alone.
	rec, resp = doJSON(t, r, http.MethodPut, "/sessions/s1/guest-count", SetGuestCountRequest{Count: 80})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Changed)
	assert.False(t, *resp.Changed)
	assert.Equal(t, 150, resp.Value)
}

func TestGuestController_SecondLockUnionsReason(t *testing.T) {
	r, _ := newGuestRouter(t)

	doJSON(t, r, http.MethodPost, "/sessions/s1/guest-count/lock", LockGuestCountRequest{Count: 150, Reason: "venue"})
	rec, resp := doJSON(t, r, http.MethodPost, "/sessions/s1/guest-count/lock", LockGuestCountRequest{Count: 300, Reason: "catering"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 150, resp.Value)
	assert.ElementsMatch(t, []string{"venue", "catering"}, resp.LockedReasons)
}

func TestGuestController_RejectsUnknownReason(t *testing.T) {
	r, _ := newGuestRouter(t)

	rec, _ := doJSON(t, r, http.MethodPost, "/sessions/s1/guest-count/lock", LockGuestCountRequest{Count: 150, Reason: "florist"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestController_ClampsZeroCountToMinimum(t *testing.T) {
	r, _ := newGuestRouter(t)

	// Clamping is storefront policy, not a validation failure.
	rec, resp := doJSON(t, r, http.MethodPut, "/sessions/s1/guest-count", map[string]int{"count": 0})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Value)

	rec, resp = doJSON(t, r, http.MethodPut, "/sessions/s1/guest-count", map[string]int{"count": -10})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp.Value)
}
