package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// HMOHandler handles the insurer directory.
type HMOHandler struct {
	DB *gorm.DB
}

// NewHMOHandler creates a new HMOHandler.
func NewHMOHandler(db *gorm.DB) *HMOHandler {
	return &HMOHandler{DB: db}
}

// HMORequest represents the request body for creating or updating an HMO.
type HMORequest struct {
	Name         string `json:"name" binding:"required"`
	Code         string `json:"code" binding:"required"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
	Address      string `json:"address"`
}

// CreateHMO registers an insurer.
func (h *HMOHandler) CreateHMO(c *gin.Context) {
	var req HMORequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hmo := models.HMO{
		Name:         req.Name,
		Code:         req.Code,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		IsActive:     true,
	}
	if err := h.DB.Create(&hmo).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "An HMO with this code already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create HMO: "+err.Error())
		return
	}

	utils.Created(c, "HMO created successfully", hmo)
}

// GetHMOs lists insurers.
func (h *HMOHandler) GetHMOs(c *gin.Context) {
	var hmos []models.HMO
	query := h.DB.Order("name asc")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&hmos).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch HMOs: "+err.Error())
		return
	}
	utils.Success(c, "HMOs fetched successfully", hmos)
}

// GetHMOByID fetches one insurer.
func (h *HMOHandler) GetHMOByID(c *gin.Context) {
	var hmo models.HMO
	if err := h.DB.First(&hmo, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "HMO not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "HMO fetched successfully", hmo)
}

// UpdateHMO updates an insurer.
func (h *HMOHandler) UpdateHMO(c *gin.Context) {
	var hmo models.HMO
	if err := h.DB.First(&hmo, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "HMO not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req HMORequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	hmo.Name = req.Name
	hmo.Code = req.Code
	hmo.ContactEmail = req.ContactEmail
	hmo.ContactPhone = req.ContactPhone
	hmo.Address = req.Address
	if err := h.DB.Save(&hmo).Error; err != nil {
		utils.InternalServerError(c, "Failed to update HMO: "+err.Error())
		return
	}

	utils.Success(c, "HMO updated successfully", hmo)
}

// DeactivateHMO disables an insurer without deleting it.
func (h *HMOHandler) DeactivateHMO(c *gin.Context) {
	var hmo models.HMO
	if err := h.DB.First(&hmo, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "HMO not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Model(&hmo).Update("is_active", false).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate HMO: "+err.Error())
		return
	}

	utils.Success(c, "HMO deactivated", hmo)
}
