package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// ReportHandler exposes the read-only revenue reports.
type ReportHandler struct {
	Reports *billing.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *billing.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports}
}

// Revenue returns the revenue report for a date range.
func (h *ReportHandler) Revenue(c *gin.Context) {
	filter := billing.ReportFilter{Department: c.Query("department")}

	if from := c.Query("startDate"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		filter.From = t
	}
	if to := c.Query("endDate"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		// Inclusive end date
		filter.To = t.AddDate(0, 0, 1)
	}

	report, err := h.Reports.RevenueReport(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Revenue report generated", report)
}

// PendingHMO returns the outstanding insurer liability grouped by HMO.
func (h *ReportHandler) PendingHMO(c *gin.Context) {
	filter := billing.ClaimFilter{
		HMOID:  c.Query("hmoId"),
		Status: models.ClaimStatus(c.Query("status")),
	}

	summary, err := h.Reports.PendingHMOSummary(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Pending HMO summary generated", summary)
}

// Dashboard returns the fixed-window dashboard statistics.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	stats, err := h.Reports.DashboardStats(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Dashboard statistics generated", stats)
}
