package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/domain/booking"
	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/schedule"
)

// BookingController handles booking-related HTTP requests.
type BookingController struct {
	bookingRepo     booking.Repository
	installmentRepo booking.InstallmentRepository
}

// NewBookingController creates a new BookingController.
func NewBookingController(
	bookingRepo booking.Repository,
	installmentRepo booking.InstallmentRepository,
) *BookingController {
	return &BookingController{
		bookingRepo:     bookingRepo,
		installmentRepo: installmentRepo,
	}
}

// Create handles POST /api/v1/bookings
func (h *BookingController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	b, err := booking.NewBooking(req.SessionID, req.CoupleName, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.WeddingDate != nil && *req.WeddingDate != "" {
		parsed, err := schedule.ParseCalendarDate(*req.WeddingDate)
		if err != nil {
			writeError(w, domainErrors.NewValidationError("wedding_date", "must be formatted YYYY-MM-DD"))
			return
		}
		b.WeddingDate = &parsed
	}

	if err := h.bookingRepo.Create(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromBooking(b))
}

// Get handles GET /api/v1/bookings/{id}
func (h *BookingController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid booking id", Code: "invalid_id"})
		return
	}

	b, err := h.bookingRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromBooking(b))
}

// GetBySession handles GET /api/v1/sessions/{sessionID}/booking
func (h *BookingController) GetBySession(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingRepo.GetBySessionID(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromBooking(b))
}

// Purchases handles GET /api/v1/bookings/{id}/purchases
func (h *BookingController) Purchases(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid booking id", Code: "invalid_id"})
		return
	}

	purchases, err := h.bookingRepo.ListPurchases(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, FromPurchase(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// Plan handles GET /api/v1/bookings/{id}/plan
func (h *BookingController) Plan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid booking id", Code: "invalid_id"})
		return
	}

	snap, err := h.bookingRepo.GetPlanSnapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "no payment plan on file", Code: "not_found"})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Installments handles GET /api/v1/bookings/{id}/installments
func (h *BookingController) Installments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid booking id", Code: "invalid_id"})
		return
	}

	rows, err := h.installmentRepo.ListByBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]*InstallmentResponse, 0, len(rows))
	for _, i := range rows {
		out = append(out, FromInstallment(i))
	}
	writeJSON(w, http.StatusOK, out)
}
