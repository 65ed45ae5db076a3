package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-billing-server/internal/billing"
	"hospital-billing-server/internal/middleware"
	"hospital-billing-server/internal/models"
	"hospital-billing-server/internal/utils"
)

// PaymentHandler exposes payment collection, reversal and validation.
type PaymentHandler struct {
	DB       *gorm.DB
	Payments *billing.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(db *gorm.DB, payments *billing.PaymentService) *PaymentHandler {
	return &PaymentHandler{DB: db, Payments: payments}
}

// CollectRequest represents the request body for collecting a payment.
type CollectRequest struct {
	EncounterID   string   `json:"encounterId" binding:"required,uuid"`
	ChargeIDs     []string `json:"chargeIds" binding:"required,min=1,dive,uuid"`
	PaymentMethod string   `json:"paymentMethod" binding:"required,oneof=cash card insurance deposit retainership"`
}

// Collect settles a set of pending charges into a receipt.
func (h *PaymentHandler) Collect(c *gin.Context) {
	var req CollectRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	cashierID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Cashier not found in token")
		return
	}

	receipt, err := h.Payments.Collect(c.Request.Context(), billing.CollectInput{
		EncounterID: req.EncounterID,
		ChargeIDs:   req.ChargeIDs,
		Method:      models.PaymentMethod(req.PaymentMethod),
		CashierID:   cashierID,
	})
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Created(c, "Payment collected successfully", receipt)
}

// Reverse voids a receipt and reverts its charges.
func (h *PaymentHandler) Reverse(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	receipt, err := h.Payments.Reverse(c.Request.Context(), c.Param("receiptId"), userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, "Payment reversed successfully", gin.H{
		"receipt":        receipt,
		"amountRestored": receipt.AmountPaid,
	})
}

// ValidateRequest represents the request body for a department validation.
type ValidateRequest struct {
	ReceiptNumber string `json:"receiptNumber" binding:"required"`
	Department    string `json:"department" binding:"required"`
}

// Validate records that a department has sighted a paid receipt. Idempotent
// per user and department.
func (h *PaymentHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not found in token")
		return
	}

	receipt, err := h.Payments.Validate(c.Request.Context(), req.ReceiptNumber, req.Department, userID)
	if err != nil {
		serviceError(c, err)
		return
	}

	utils.Success(c, "Receipt validated", receipt)
}

// GetReceiptByID fetches one receipt with its charges and validations.
func (h *PaymentHandler) GetReceiptByID(c *gin.Context) {
	var receipt models.Receipt
	err := h.DB.Preload("Charges").Preload("Validations").
		First(&receipt, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Receipt not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Receipt fetched successfully", receipt)
}

// GetReceipts lists receipts, filterable by patient, method and status.
func (h *PaymentHandler) GetReceipts(c *gin.Context) {
	var receipts []models.Receipt
	query := h.DB.Order("created_at desc").Limit(100)
	if patientID := c.Query("patientId"); patientID != "" {
		query = query.Where("patient_id = ?", patientID)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&receipts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch receipts: "+err.Error())
		return
	}
	utils.Success(c, "Receipts fetched successfully", receipts)
}
