package models

import (
	"time"
)

// PaymentMethod represents how a receipt was settled
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCard         PaymentMethod = "card"
	MethodInsurance    PaymentMethod = "insurance"
	MethodDeposit      PaymentMethod = "deposit"
	MethodRetainership PaymentMethod = "retainership"
)

// InsurerSettled reports whether the method leaves the HMO portion of the
// settled charges as an insurer liability (realized only when a claim is paid).
func (m PaymentMethod) InsurerSettled() bool {
	return m == MethodInsurance || m == MethodRetainership
}

// ReceiptStatus represents whether a receipt is live or has been reversed
type ReceiptStatus string

const (
	ReceiptActive ReceiptStatus = "active"
	ReceiptVoided ReceiptStatus = "voided"
)

// Receipt represents one payment event settling a set of encounter charges.
// AmountPaid always equals the sum of TotalAmount over the linked charges at
// payment time; the link and the status flip are written in one transaction.
type Receipt struct {
	BaseModel
	ReceiptNumber string        `gorm:"uniqueIndex;size:50;not null" json:"receiptNumber"`
	PatientID     string        `gorm:"size:36;index;not null" json:"patientId"`
	EncounterID   string        `gorm:"size:36;index" json:"encounterId,omitempty"`
	AmountPaid    float64       `gorm:"type:decimal(12,2);not null" json:"amountPaid"`
	PaymentMethod PaymentMethod `gorm:"size:20;not null" json:"paymentMethod"`
	CashierID     string        `gorm:"size:36;index" json:"cashierId"`
	Status        ReceiptStatus `gorm:"size:20;default:'active';index" json:"status"`
	VoidedAt      *time.Time    `json:"voidedAt,omitempty"`

	// Relations
	Patient     Patient             `gorm:"foreignKey:PatientID" json:"-"`
	Cashier     User                `gorm:"foreignKey:CashierID" json:"-"`
	Charges     []EncounterCharge   `gorm:"foreignKey:ReceiptID" json:"charges,omitempty"`
	Validations []ReceiptValidation `gorm:"foreignKey:ReceiptID" json:"validations,omitempty"`
}

// ReceiptValidation records a department acknowledging a paid receipt before
// acting on the encounter. At most one row per (receipt, user, department).
type ReceiptValidation struct {
	BaseModel
	ReceiptID  string `gorm:"size:36;not null;uniqueIndex:idx_receipt_user_dept" json:"receiptId"`
	UserID     string `gorm:"size:36;not null;uniqueIndex:idx_receipt_user_dept" json:"userId"`
	Department string `gorm:"size:100;not null;uniqueIndex:idx_receipt_user_dept" json:"department"`

	Receipt Receipt `gorm:"foreignKey:ReceiptID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}
