package models

import (
	"time"
)

// ProviderTier is a patient's payer classification. Standard is self-pay;
// the other three are insurance schemes with an associated HMO.
type ProviderTier string

const (
	TierStandard     ProviderTier = "Standard"
	TierRetainership ProviderTier = "Retainership"
	TierNHIA         ProviderTier = "NHIA"
	TierKSCHMA       ProviderTier = "KSCHMA"
)

// Insured reports whether the tier is covered by an HMO and therefore claimable.
func (t ProviderTier) Insured() bool {
	return t == TierRetainership || t == TierNHIA || t == TierKSCHMA
}

// Patient represents a registered patient
type Patient struct {
	BaseModel
	HospitalNumber string       `gorm:"uniqueIndex;size:50;not null" json:"hospitalNumber"`
	FirstName      string       `gorm:"size:100;not null" json:"firstName"`
	LastName       string       `gorm:"size:100;not null" json:"lastName"`
	DateOfBirth    *time.Time   `json:"dateOfBirth,omitempty"`
	Gender         string       `gorm:"size:10" json:"gender,omitempty"`
	PhoneNumber    string       `gorm:"size:50" json:"phoneNumber,omitempty"`
	Address        string       `gorm:"size:255" json:"address,omitempty"`
	Provider       ProviderTier `gorm:"size:20;default:'Standard';index" json:"provider"`
	HMOID          *string      `gorm:"size:36;index" json:"hmoId,omitempty"`
	HMOMemberID    string       `gorm:"size:100" json:"hmoMemberId,omitempty"`
	// DepositBalance is a prepaid wallet. It must never go negative and is
	// only mutated by top-ups, charge settlement and payment reversal.
	DepositBalance float64 `gorm:"type:decimal(12,2);default:0" json:"depositBalance"`

	// Relations (not always preloaded)
	HMO        *HMO              `gorm:"foreignKey:HMOID" json:"hmo,omitempty"`
	Encounters []Encounter       `gorm:"foreignKey:PatientID" json:"-"`
	Charges    []EncounterCharge `gorm:"foreignKey:PatientID" json:"-"`
}

// DepositTransactionKind classifies a deposit wallet movement.
type DepositTransactionKind string

const (
	DepositTopUp    DepositTransactionKind = "topup"
	DepositPayment  DepositTransactionKind = "payment"
	DepositReversal DepositTransactionKind = "reversal"
)

// DepositTransaction is an audit row for every deposit balance movement.
// Amount is signed: positive for top-ups and reversals, negative for payments.
type DepositTransaction struct {
	BaseModel
	PatientID   string                 `gorm:"size:36;index;not null" json:"patientId"`
	Amount      float64                `gorm:"type:decimal(12,2);not null" json:"amount"`
	Kind        DepositTransactionKind `gorm:"size:20;not null" json:"kind"`
	ReceiptID   *string                `gorm:"size:36;index" json:"receiptId,omitempty"`
	PerformedBy string                 `gorm:"size:36" json:"performedBy"`
	Notes       string                 `gorm:"size:255" json:"notes,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}
