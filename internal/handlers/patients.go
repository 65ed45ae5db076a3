package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/middleware"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// PatientHandler handles patient registration and the deposit wallet.
type PatientHandler struct {
	DB       *gorm.DB
	Payments *billing.PaymentService
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, payments *billing.PaymentService) *PatientHandler {
	return &PatientHandler{DB: db, Payments: payments}
}

// PatientRequest represents the request body for registering a patient.
type PatientRequest struct {
	HospitalNumber string  `json:"hospitalNumber" binding:"required"`
	FirstName      string  `json:"firstName" binding:"required"`
	LastName       string  `json:"lastName" binding:"required"`
	DateOfBirth    *string `json:"dateOfBirth"`
	Gender         string  `json:"gender" binding:"omitempty,oneof=male female"`
	PhoneNumber    string  `json:"phoneNumber"`
	Address        string  `json:"address"`
	Provider       string  `json:"provider" binding:"required,oneof=Standard Retainership NHIA KSCHMA"`
	HMOID          *string `json:"hmoId" binding:"omitempty,uuid"`
	HMOMemberID    string  `json:"hmoMemberId"`
}

// CreatePatient registers a patient. Insured tiers must carry an HMO.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tier := models.ProviderTier(req.Provider)
	if tier.Insured() && (req.HMOID == nil || *req.HMOID == "") {
		utils.BadRequest(c, "An HMO is required for provider tier "+req.Provider)
		return
	}
	if req.HMOID != nil && *req.HMOID != "" {
		var hmo models.HMO
		if err := h.DB.First(&hmo, "id = ? AND is_active = ?", *req.HMOID, true).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "HMO not found or inactive")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
	}

	patient := models.Patient{
		HospitalNumber: req.HospitalNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		PhoneNumber:    req.PhoneNumber,
		Address:        req.Address,
		Provider:       tier,
		HMOID:          req.HMOID,
		HMOMemberID:    req.HMOMemberID,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = &dob
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A patient with this hospital number already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient registered successfully", patient)
}

// GetPatients lists patients, searchable by hospital number or name.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	var patients []models.Patient
	query := h.DB.Preload("HMO").Order("created_at desc").Limit(100)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"hospital_number LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like,
		)
	}
	if provider := c.Query("provider"); provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches one patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.Preload("HMO").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatient updates registration details. The deposit balance is not
// editable here; it only moves through top-ups, payments and reversals.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req PatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tier := models.ProviderTier(req.Provider)
	if tier.Insured() && (req.HMOID == nil || *req.HMOID == "") {
		utils.BadRequest(c, "An HMO is required for provider tier "+req.Provider)
		return
	}

	patient.HospitalNumber = req.HospitalNumber
	patient.FirstName = req.FirstName
	patient.LastName = req.LastName
	patient.Gender = req.Gender
	patient.PhoneNumber = req.PhoneNumber
	patient.Address = req.Address
	patient.Provider = tier
	patient.HMOID = req.HMOID
	patient.HMOMemberID = req.HMOMemberID
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = &dob
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DepositRequest represents the request body for a deposit top-up.
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Notes  string  `json:"notes"`
}

// TopUpDeposit credits a patient's prepaid wallet.
func (h *PatientHandler) TopUpDeposit(c *gin.Context) {
	var req DepositRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	patient, err := h.Payments.TopUpDeposit(c.Request.Context(), c.Param("id"), req.Amount, userID, req.Notes)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, "Deposit recorded successfully", patient)
}

// GetDepositHistory lists a patient's deposit wallet movements.
func (h *PatientHandler) GetDepositHistory(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var txns []models.DepositTransaction
	if err := h.DB.Where("patient_id = ?", patient.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch deposit history: "+err.Error())
		return
	}

	utils.Success(c, "Deposit history fetched successfully", gin.H{
		"balance":      patient.DepositBalance,
		"transactions": txns,
	})
}
