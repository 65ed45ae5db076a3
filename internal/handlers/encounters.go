package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/middleware"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// EncounterHandler handles clinical visits.
type EncounterHandler struct {
	DB *gorm.DB
}

// NewEncounterHandler creates a new EncounterHandler.
func NewEncounterHandler(db *gorm.DB) *EncounterHandler {
	return &EncounterHandler{DB: db}
}

// EncounterRequest represents the request body for opening an encounter.
type EncounterRequest struct {
	PatientID  string `json:"patientId" binding:"required,uuid"`
	Type       string `json:"type" binding:"omitempty,oneof=outpatient inpatient emergency"`
	Department string `json:"department"`
	Notes      string `json:"notes"`
}

// CreateEncounter opens a visit for a patient.
func (h *EncounterHandler) CreateEncounter(c *gin.Context) {
	var req EncounterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	encounterType := models.EncounterOutpatient
	if req.Type != "" {
		encounterType = models.EncounterType(req.Type)
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	encounter := models.Encounter{
		PatientID:   patient.ID,
		Type:        encounterType,
		Department:  req.Department,
		Stage:       models.StageBilling,
		AttendingID: userID,
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&encounter).Error; err != nil {
		utils.InternalServerError(c, "Failed to create encounter: "+err.Error())
		return
	}

	utils.Created(c, "Encounter created successfully", encounter)
}

// GetEncounters lists encounters, optionally for one patient or stage.
func (h *EncounterHandler) GetEncounters(c *gin.Context) {
	var encounters []models.Encounter
	query := h.DB.Order("created_at desc").Limit(100)
	if patientID := c.Query("patientId"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if stage := c.Query("stage"); stage != "" {
		query = query.Where("stage = ?", stage)
	}
	if err := query.Find(&encounters).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch encounters: "+err.Error())
		return
	}
	utils.Success(c, "Encounters fetched successfully", encounters)
}

// GetEncounterByID fetches one encounter with its ledger lines.
func (h *EncounterHandler) GetEncounterByID(c *gin.Context) {
	var encounter models.Encounter
	err := h.DB.Preload("Charges").First(&encounter, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Encounter not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Encounter fetched successfully", encounter)
}
