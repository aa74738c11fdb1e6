package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oakhollow/banquet/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func previewPlan(t *testing.T, req PlanPreviewRequest) (*httptest.ResponseRecorder, PlanResponse) {
	t.Helper()
	h := NewPlanController(config.BookingConfig{
		MaxGuests:      500,
		FinalDueDays:   35,
		DepositPercent: 0.25,
		Currency:       "USD",
	})

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(req))
	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/plans/preview", &buf)
	rec := httptest.NewRecorder()
	h.Preview(rec, httpReq)

	var resp PlanResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	return rec, resp
}

func TestPlanController_DepositPreview(t *testing.T) {
	wedding := "2027-07-01"
	rec, resp := previewPlan(t, PlanPreviewRequest{Total: 1000, WeddingDate: &wedding})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "deposit", resp.Strategy)
	assert.Equal(t, 1000.0, resp.Total)
	assert.Equal(t, 250.0, resp.Deposit)
	assert.Equal(t, 750.0, resp.Remaining)
	assert.Equal(t, 250.0, resp.AmountDueNow)
	assert.Greater(t, resp.PlanMonths, 0)
	require.NotNil(t, resp.FinalDueAt)
	// Final payment lands 35 days ahead of the wedding.
	assert.Equal(t, "2027-05-27", resp.FinalDueAt.Format("2006-01-02"))
}

func TestPlanController_PayInFull(t *testing.T) {
	rec, resp := previewPlan(t, PlanPreviewRequest{Total: 1000, PayInFull: true})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "full", resp.Strategy)
	assert.Equal(t, 1000.0, resp.AmountDueNow)
	assert.Equal(t, 0, resp.PlanMonths)
	assert.Nil(t, resp.NextChargeAt)
}

func TestPlanController_CustomDepositPercent(t *testing.T) {
	pct := 0.5
	wedding := "2027-07-01"
	rec, resp := previewPlan(t, PlanPreviewRequest{Total: 1000, DepositPercent: &pct, WeddingDate: &wedding})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500.0, resp.Deposit)
	assert.Equal(t, 500.0, resp.Remaining)
}

func TestPlanController_BadWeddingDate(t *testing.T) {
	bad := "July 1st 2027"
	rec, _ := previewPlan(t, PlanPreviewRequest{Total: 1000, WeddingDate: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlanController_NegativeTotal(t *testing.T) {
	rec, _ := previewPlan(t, PlanPreviewRequest{Total: -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
