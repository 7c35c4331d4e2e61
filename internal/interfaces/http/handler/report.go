package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/retail/backend/internal/application/report"
	"github.com/retail/backend/internal/infrastructure/scheduler"
)

// ReportHandler exposes the monthly profitability report
type ReportHandler struct {
	BaseHandler
	profitabilityService *reportapp.ProfitabilityService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(profitabilityService *reportapp.ProfitabilityService) *ReportHandler {
	return &ReportHandler{profitabilityService: profitabilityService}
}

// RecomputeRequest names the period to recompute
type RecomputeRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// Recompute rebuilds the profitability rows for one month.
// POST /api/v1/reports/profitability/recompute
func (h *ReportHandler) Recompute(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.profitabilityService.Recompute(c.Request.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidPeriod) {
			h.BadRequest(c, err.Error())
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List returns the stored profitability rows for one month.
// GET /api/v1/reports/profitability?year=2026&month=7
func (h *ReportHandler) List(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		h.BadRequest(c, "year is required")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		h.BadRequest(c, "month must be between 1 and 12")
		return
	}

	rows, err := h.profitabilityService.ListByPeriod(c.Request.Context(), year, time.Month(month))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}
