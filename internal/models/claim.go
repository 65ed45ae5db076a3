package models

import (
	"time"
)

// ClaimStatus represents the lifecycle state of an insurer claim
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"
	ClaimSubmitted ClaimStatus = "submitted"
	ClaimApproved  ClaimStatus = "approved"
	ClaimPaid      ClaimStatus = "paid"
	ClaimRejected  ClaimStatus = "rejected"
)

// Claim is a bundled insurer billing submission for one encounter.
// The unique index on EncounterID enforces at most one claim per encounter;
// a concurrent duplicate attempt fails with a key violation.
type Claim struct {
	BaseModel
	ClaimNumber      string      `gorm:"uniqueIndex;size:50;not null" json:"claimNumber"`
	PatientID        string      `gorm:"size:36;index;not null" json:"patientId"`
	HMOID            string      `gorm:"size:36;index;not null" json:"hmoId"`
	EncounterID      string      `gorm:"size:36;uniqueIndex;not null" json:"encounterId"`
	TotalClaimAmount float64     `gorm:"type:decimal(12,2);not null" json:"totalClaimAmount"`
	Status           ClaimStatus `gorm:"size:20;default:'pending';index" json:"status"`
	// Each date is stamped the first time the status reaches that value.
	SubmittedDate   *time.Time `json:"submittedDate,omitempty"`
	ApprovedDate    *time.Time `json:"approvedDate,omitempty"`
	PaidDate        *time.Time `json:"paidDate,omitempty"`
	RejectionReason string     `gorm:"size:255" json:"rejectionReason,omitempty"`
	Notes           string     `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient   Patient     `gorm:"foreignKey:PatientID" json:"-"`
	HMO       HMO         `gorm:"foreignKey:HMOID" json:"-"`
	Encounter Encounter   `gorm:"foreignKey:EncounterID" json:"-"`
	Items     []ClaimItem `gorm:"foreignKey:ClaimID" json:"items,omitempty"`
}

// ClaimItem is an immutable snapshot of one encounter charge at claim
// generation time. Later edits to the ledger or the master price list never
// alter an already-generated claim.
type ClaimItem struct {
	BaseModel
	ClaimID        string         `gorm:"size:36;index;not null" json:"claimId"`
	Description    string         `gorm:"size:255;not null" json:"description"`
	Category       ChargeCategory `gorm:"size:30" json:"category"`
	Quantity       int            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice      float64        `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalAmount    float64        `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	PatientPortion float64        `gorm:"type:decimal(12,2);default:0" json:"patientPortion"`
	HMOPortion     float64        `gorm:"type:decimal(12,2);default:0" json:"hmoPortion"`

	Claim Claim `gorm:"foreignKey:ClaimID" json:"-"`
}

// ClaimSequence backs year-scoped claim numbering. The row is incremented
// under a row lock inside the claim-generation transaction, never via a
// read-then-count.
type ClaimSequence struct {
	Year  int `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Value int `gorm:"not null;default:0" json:"value"`
}
