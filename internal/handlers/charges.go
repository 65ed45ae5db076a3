package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// ChargeHandler manages the master price list.
type ChargeHandler struct {
	DB *gorm.DB
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(db *gorm.DB) *ChargeHandler {
	return &ChargeHandler{DB: db}
}

// ChargeRequest represents the request body for creating or updating a
// price list item. A tier fee of zero means "fall back to basePrice".
type ChargeRequest struct {
	Name            string  `json:"name" binding:"required"`
	Category        string  `json:"category" binding:"required,oneof=consultation lab radiology drugs nursing other"`
	StandardFee     float64 `json:"standardFee" binding:"gte=0"`
	RetainershipFee float64 `json:"retainershipFee" binding:"gte=0"`
	NHIAFee         float64 `json:"nhiaFee" binding:"gte=0"`
	KSCHMAFee       float64 `json:"kschmaFee" binding:"gte=0"`
	BasePrice       float64 `json:"basePrice" binding:"required,gt=0"`
}

// CreateCharge adds a price list item.
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var req ChargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	charge := models.Charge{
		Name:            req.Name,
		Category:        models.ChargeCategory(req.Category),
		StandardFee:     req.StandardFee,
		RetainershipFee: req.RetainershipFee,
		NHIAFee:         req.NHIAFee,
		KSCHMAFee:       req.KSCHMAFee,
		BasePrice:       req.BasePrice,
		IsActive:        true,
	}
	if err := h.DB.Create(&charge).Error; err != nil {
		utils.InternalServerError(c, "Failed to create charge: "+err.Error())
		return
	}

	utils.Created(c, "Charge created successfully", charge)
}

// GetCharges lists price list items, optionally filtered by category.
func (h *ChargeHandler) GetCharges(c *gin.Context) {
	var charges []models.Charge
	query := h.DB.Order("name asc")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&charges).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch charges: "+err.Error())
		return
	}
	utils.Success(c, "Charges fetched successfully", charges)
}

// GetChargeByID fetches one price list item.
func (h *ChargeHandler) GetChargeByID(c *gin.Context) {
	var charge models.Charge
	if err := h.DB.First(&charge, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Charge not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Charge fetched successfully", charge)
}

// UpdateCharge updates a price list item. Existing ledger lines keep the
// prices resolved at their creation time.
func (h *ChargeHandler) UpdateCharge(c *gin.Context) {
	var charge models.Charge
	if err := h.DB.First(&charge, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Charge not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req ChargeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	charge.Name = req.Name
	charge.Category = models.ChargeCategory(req.Category)
	charge.StandardFee = req.StandardFee
	charge.RetainershipFee = req.RetainershipFee
	charge.NHIAFee = req.NHIAFee
	charge.KSCHMAFee = req.KSCHMAFee
	charge.BasePrice = req.BasePrice
	if err := h.DB.Save(&charge).Error; err != nil {
		utils.InternalServerError(c, "Failed to update charge: "+err.Error())
		return
	}

	utils.Success(c, "Charge updated successfully", charge)
}

// DeactivateCharge removes an item from the active price list. Charges are
// never hard-deleted; historical ledger lines keep their reference.
func (h *ChargeHandler) DeactivateCharge(c *gin.Context) {
	var charge models.Charge
	if err := h.DB.First(&charge, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Charge not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Model(&charge).Update("is_active", false).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate charge: "+err.Error())
		return
	}

	utils.Success(c, "Charge deactivated", charge)
}
