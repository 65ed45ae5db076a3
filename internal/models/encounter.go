package models

// EncounterStage tracks where a visit sits in the billing workflow.
type EncounterStage string

const (
	StageBilling   EncounterStage = "billing"
	StagePayment   EncounterStage = "payment"
	StageService   EncounterStage = "service"
	StageCompleted EncounterStage = "completed"
)

// EncounterType represents the kind of visit
type EncounterType string

const (
	EncounterOutpatient EncounterType = "outpatient"
	EncounterInpatient  EncounterType = "inpatient"
	EncounterEmergency  EncounterType = "emergency"
)

// Encounter represents one clinical visit during which charges accrue
type Encounter struct {
	BaseModel
	PatientID   string         `gorm:"size:36;index;not null" json:"patientId"`
	Type        EncounterType  `gorm:"size:20;default:'outpatient'" json:"type"`
	Department  string         `gorm:"size:100" json:"department"`
	Stage       EncounterStage `gorm:"size:20;default:'billing';index" json:"stage"`
	AttendingID string         `gorm:"size:36" json:"attendingId,omitempty"`
	Notes       string         `gorm:"type:text" json:"notes,omitempty"`

	// Relations
	Patient Patient           `gorm:"foreignKey:PatientID" json:"-"`
	Charges []EncounterCharge `gorm:"foreignKey:EncounterID" json:"charges,omitempty"`
}

// AdvanceStage moves the encounter to the next workflow stage.
// Called as a side effect of payment collection.
func (e *Encounter) AdvanceStage() {
	switch e.Stage {
	case StageBilling:
		e.Stage = StagePayment
	case StagePayment:
		e.Stage = StageService
	case StageService:
		e.Stage = StageCompleted
	}
}
