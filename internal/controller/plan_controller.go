package controller

import (
	"net/http"
	"time"

	domainErrors "github.com/oakhollow/banquet/internal/domain/errors"
	"github.com/oakhollow/banquet/internal/domain/schedule"
	"github.com/oakhollow/banquet/internal/infrastructure/config"
)

// PlanController computes payment-plan previews for the checkout widgets.
type PlanController struct {
	cfg config.BookingConfig
}

// NewPlanController creates a new PlanController.
func NewPlanController(cfg config.BookingConfig) *PlanController {
	return &PlanController{cfg: cfg}
}

// Preview handles POST /api/v1/plans/preview
//
// The widget calls this on every slider move; the same inputs always produce
// the same plan, so the preview a couple approves is the plan that gets
// frozen at checkout.
func (h *PlanController) Preview(w http.ResponseWriter, r *http.Request) {
	var req PlanPreviewRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	plan, err := buildPlan(h.cfg, req.Total, req.PayInFull, req.DepositPercent, req.WeddingDate, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPlan(plan))
}

// buildPlan converts wire-level plan inputs into a computed schedule.Plan,
// filling policy defaults from configuration.
func buildPlan(
	cfg config.BookingConfig,
	total float64,
	payInFull bool,
	depositPercent *float64,
	weddingDate *string,
	today time.Time,
) (*schedule.Plan, error) {
	pct := cfg.DepositPercent
	if depositPercent != nil {
		pct = *depositPercent
	}

	var wedding *time.Time
	if weddingDate != nil && *weddingDate != "" {
		parsed, err := schedule.ParseCalendarDate(*weddingDate)
		if err != nil {
			return nil, domainErrors.NewValidationError("wedding_date", "must be formatted YYYY-MM-DD")
		}
		wedding = &parsed
	}

	return schedule.BuildPlan(schedule.BuildInput{
		Total:          total,
		DepositPercent: pct,
		PayInFull:      payInFull,
		WeddingDate:    wedding,
		FinalDueDays:   cfg.FinalDueDays,
		Today:          today,
	})
}
