package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinetick/cinema-booking/internal/service"
)

// ReportHandler exposes the daily settlement reconciliation to staff.
// The same routine runs on a timer from main; this route exists for
// reruns and for backfilling after an outage.
type ReportHandler struct {
	Reports *service.ReportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	if reports == nil {
		panic("nil service passed to NewReportHandler")
	}
	return &ReportHandler{Reports: reports}
}

// RunDaily handles POST /v1/admin/reports/daily.  It reconciles the
// previous UTC day and returns the persisted per-method summaries.
func (h *ReportHandler) RunDaily(c echo.Context) error {
	summaries, err := h.Reports.RunDaily(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("daily report: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"summaries": summaries})
}
