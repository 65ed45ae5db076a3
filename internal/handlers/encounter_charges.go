package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/middleware"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// EncounterChargeHandler exposes the encounter charge ledger.
type EncounterChargeHandler struct {
	Ledger *billing.LedgerService
}

// NewEncounterChargeHandler creates a new EncounterChargeHandler.
func NewEncounterChargeHandler(ledger *billing.LedgerService) *EncounterChargeHandler {
	return &EncounterChargeHandler{Ledger: ledger}
}

// AddChargeRequest represents the request body for adding a ledger line.
// Either chargeId (master price list) or adhoc must be set, not both.
type AddChargeRequest struct {
	ChargeID string             `json:"chargeId" binding:"omitempty,uuid"`
	Adhoc    *AdhocChargeDetail `json:"adhoc"`
	Quantity int                `json:"quantity" binding:"required,min=1"`
	Notes    string             `json:"notes"`
}

// AdhocChargeDetail describes a charge with no master price list entry.
type AdhocChargeDetail struct {
	ItemName  string  `json:"itemName" binding:"required"`
	Category  string  `json:"category" binding:"required,oneof=consultation lab radiology drugs nursing other"`
	UnitPrice float64 `json:"unitPrice" binding:"required,gt=0"`
}

// AddCharge appends a pending ledger line to an encounter.
func (h *EncounterChargeHandler) AddCharge(c *gin.Context) {
	var req AddChargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if (req.ChargeID == "") == (req.Adhoc == nil) {
		utils.BadRequest(c, "Provide exactly one of chargeId or adhoc")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	encounterID := c.Param("id")

	var line *models.EncounterCharge
	var err error
	if req.ChargeID != "" {
		line, err = h.Ledger.AddCharge(c.Request.Context(), billing.AddChargeInput{
			EncounterID: encounterID,
			ChargeID:    req.ChargeID,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
			OrderedBy:   userID,
		})
	} else {
		line, err = h.Ledger.AddAdhocCharge(c.Request.Context(), billing.AddAdhocChargeInput{
			EncounterID: encounterID,
			ItemName:    req.Adhoc.ItemName,
			Category:    models.ChargeCategory(req.Adhoc.Category),
			UnitPrice:   req.Adhoc.UnitPrice,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
			OrderedBy:   userID,
		})
	}
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Created(c, "Charge added successfully", line)
}

// GetCharges lists the ledger lines of an encounter.
func (h *EncounterChargeHandler) GetCharges(c *gin.Context) {
	lines, err := h.Ledger.ListForEncounter(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Charges fetched successfully", lines)
}

// UpdateChargeRequest represents the request body for editing a pending line.
type UpdateChargeRequest struct {
	Quantity *int    `json:"quantity" binding:"omitempty,min=1"`
	Notes    *string `json:"notes"`
}

// UpdateCharge edits a pending ledger line.
func (h *EncounterChargeHandler) UpdateCharge(c *gin.Context) {
	var req UpdateChargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	line, err := h.Ledger.UpdateCharge(c.Request.Context(), c.Param("id"), req.Quantity, req.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Charge updated successfully", line)
}

// CancelCharge soft-cancels a pending ledger line.
func (h *EncounterChargeHandler) CancelCharge(c *gin.Context) {
	line, err := h.Ledger.CancelCharge(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Charge cancelled successfully", line)
}

// DeleteCharge removes a pending ledger line.
func (h *EncounterChargeHandler) DeleteCharge(c *gin.Context) {
	if err := h.Ledger.DeleteCharge(c.Request.Context(), c.Param("id")); err != nil {
		serviceError(c, err)
		return
	}
	utils.Success(c, "Charge deleted successfully", nil)
}
