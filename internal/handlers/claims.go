package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// ClaimHandler exposes claim generation and lifecycle updates.
type ClaimHandler struct {
	Claims *billing.ClaimService
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(claims *billing.ClaimService) *ClaimHandler {
	return &ClaimHandler{Claims: claims}
}

// Generate builds a claim for an encounter.
func (h *ClaimHandler) Generate(c *gin.Context) {
	claim, err := h.Claims.Generate(c.Request.Context(), c.Param("encounterId"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Created(c, "Claim generated successfully", claim)
}

// SetStatusRequest represents the request body for a claim status update.
type SetStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=pending submitted approved paid rejected"`
	RejectionReason string `json:"rejectionReason"`
	Notes           string `json:"notes"`
}

// SetStatus updates a claim's lifecycle status.
func (h *ClaimHandler) SetStatus(c *gin.Context) {
	var req SetStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	claim, err := h.Claims.SetStatus(c.Request.Context(), c.Param("id"), billing.SetStatusInput{
		Status:          models.ClaimStatus(req.Status),
		RejectionReason: req.RejectionReason,
		Notes:           req.Notes,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Claim status updated", claim)
}

// GetClaimByID fetches one claim with its items.
func (h *ClaimHandler) GetClaimByID(c *gin.Context) {
	claim, err := h.Claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Claim fetched successfully", claim)
}

// GetClaims lists claims, filterable by HMO, status and date range.
func (h *ClaimHandler) GetClaims(c *gin.Context) {
	filter := billing.ClaimFilter{
		HMOID:  c.Query("hmoId"),
		Status: models.ClaimStatus(c.Query("status")),
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		// Inclusive end date
		filter.To = t.AddDate(0, 0, 1)
	}

	claims, err := h.Claims.List(c.Request.Context(), filter)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Claims fetched successfully", claims)
}
