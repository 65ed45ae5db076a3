package models

// ChargeStatus represents the lifecycle state of a ledger line
type ChargeStatus string

const (
	ChargePending   ChargeStatus = "pending"
	ChargePaid      ChargeStatus = "paid"
	ChargeCancelled ChargeStatus = "cancelled"
)

// EncounterCharge is one billable line item within an encounter.
//
// ItemName and ItemCategory are snapshots taken at creation time: the master
// charge may later change price or be deactivated, and ad-hoc lines have no
// master reference at all. UnitPrice and the patient/HMO portions are likewise
// resolved once at creation and never recomputed from current tier rules.
type EncounterCharge struct {
	BaseModel
	EncounterID  string         `gorm:"size:36;index;not null" json:"encounterId"`
	PatientID    string         `gorm:"size:36;index;not null" json:"patientId"`
	ChargeID     *string        `gorm:"size:36;index" json:"chargeId,omitempty"` // nil for ad-hoc lines
	ItemName     string         `gorm:"size:255;not null" json:"itemName"`
	ItemCategory ChargeCategory `gorm:"size:30;not null" json:"itemCategory"`
	Quantity     int            `gorm:"not null;default:1" json:"quantity"`
	UnitPrice    float64        `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalAmount  float64        `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	// PatientPortion + HMOPortion == TotalAmount, always.
	PatientPortion float64      `gorm:"type:decimal(12,2);default:0" json:"patientPortion"`
	HMOPortion     float64      `gorm:"type:decimal(12,2);default:0" json:"hmoPortion"`
	Status         ChargeStatus `gorm:"size:20;default:'pending';index" json:"status"`
	ReceiptID      *string      `gorm:"size:36;index" json:"receiptId,omitempty"` // null until paid
	Notes          string       `gorm:"size:255" json:"notes,omitempty"`
	OrderedByID    string       `gorm:"size:36" json:"orderedById,omitempty"`

	// Relations
	Encounter Encounter `gorm:"foreignKey:EncounterID" json:"-"`
	Patient   Patient   `gorm:"foreignKey:PatientID" json:"-"`
	Charge    *Charge   `gorm:"foreignKey:ChargeID" json:"-"`
	Receipt   *Receipt  `gorm:"foreignKey:ReceiptID" json:"-"`
}
