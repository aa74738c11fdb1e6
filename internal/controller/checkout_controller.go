package controller

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/oakhollow/banquet/internal/application/checkout"
	"github.com/oakhollow/banquet/internal/domain/booking"
	"github.com/oakhollow/banquet/internal/domain/money"
	"github.com/oakhollow/banquet/internal/infrastructure/config"
	"github.com/oakhollow/banquet/internal/infrastructure/observability"
)

// CheckoutController handles the payment-success callback from the checkout
// widget. It rebuilds the frozen plan from the submitted inputs and hands it
// to the finalize sequence.
type CheckoutController struct {
	finalize *checkout.FinalizeUseCase
	cfg      config.BookingConfig
	metrics  *observability.Metrics
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(
	finalize *checkout.FinalizeUseCase,
	cfg config.BookingConfig,
	metrics *observability.Metrics,
) *CheckoutController {
	return &CheckoutController{finalize: finalize, cfg: cfg, metrics: metrics}
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid booking id", Code: "invalid_id"})
		return
	}

	plan, err := buildPlan(h.cfg, req.Total, req.PayInFull, req.DepositPercent, req.WeddingDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	result, err := h.finalize.Execute(r.Context(), checkout.SuccessEvent{
		BookingID:   bookingID,
		SessionID:   req.SessionID,
		Flow:        booking.Flow(req.Flow),
		CustomerID:  req.CustomerID,
		Description: req.Description,
		Plan:        plan,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.CheckoutDuration.WithLabelValues(req.Flow).Observe(time.Since(start).Seconds())
	if result.Replayed {
		h.metrics.FinalizeReplays.Inc()
		writeJSON(w, http.StatusOK, CheckoutResponse{Replayed: true})
		return
	}
	h.metrics.CheckoutsTotal.WithLabelValues(req.Flow, string(plan.Strategy)).Inc()

	resp := CheckoutResponse{
		Booking:       FromBooking(result.Booking),
		AmountCharged: money.FromCents(result.AmountChargedCents),
		AgreementURL:  result.AgreementURL,
	}
	writeJSON(w, http.StatusCreated, resp)
}
