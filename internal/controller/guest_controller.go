package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/guestcount"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
)

// GuestController exposes the shared per-session guest count.
type GuestController struct {
	sessions *guestcount.Sessions
	metrics  *observability.Metrics
}

// NewGuestController creates a new GuestController.
func NewGuestController(sessions *guestcount.Sessions, metrics *observability.Metrics) *GuestController {
	return &GuestController{sessions: sessions, metrics: metrics}
}

// Get handles GET /api/v1/sessions/{sessionID}/guest-count
func (h *GuestController) Get(w http.ResponseWriter, r *http.Request) {
	store, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromGuestState(store.Get()))
}

// Set handles PUT /api/v1/sessions/{sessionID}/guest-count
//
// A write against a locked count is not an error: the response carries
// changed=false and the surviving state, and the widget re-renders from it.
func (h *GuestController) Set(w http.ResponseWriter, r *http.Request) {
	var req SetGuestCountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	store, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}

	changed, state := store.Set(r.Context(), req.Count)
	outcome := "applied"
	if !changed {
		outcome = "rejected"
	}
	h.metrics.GuestCountWrites.WithLabelValues(outcome).Inc()

	resp := FromGuestState(state)
	resp.Changed = &changed
	writeJSON(w, http.StatusOK, resp)
}

// Lock handles POST /api/v1/sessions/{sessionID}/guest-count/lock
func (h *GuestController) Lock(w http.ResponseWriter, r *http.Request) {
	var req LockGuestCountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reason := guestcount.LockReason(req.Reason)
	if !guestcount.ValidLockReason(reason) {
		writeError(w, domainErrors.NewValidationError("reason", "unknown lock reason"))
		return
	}

	store, err := h.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}

	locked, state := store.SetAndLock(r.Context(), req.Count, reason)
	if locked {
		h.metrics.GuestCountLocks.WithLabelValues(string(reason)).Inc()
	}

	resp := FromGuestState(state)
	resp.Changed = &locked
	writeJSON(w, http.StatusOK, resp)
}
