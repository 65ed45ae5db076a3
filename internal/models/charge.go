package models

// ChargeCategory represents the service category of a billable item
type ChargeCategory string

const (
	CategoryConsultation ChargeCategory = "consultation"
	CategoryLab          ChargeCategory = "lab"
	CategoryRadiology    ChargeCategory = "radiology"
	CategoryDrugs        ChargeCategory = "drugs"
	CategoryNursing      ChargeCategory = "nursing"
	CategoryOther        ChargeCategory = "other"
)

// Charge is a master price list item with one fee per provider tier.
// A tier fee of zero means "use BasePrice". Charges are never hard-deleted,
// only deactivated, so historical ledger lines keep a valid reference.
type Charge struct {
	BaseModel
	Name            string         `gorm:"size:255;not null;index" json:"name"`
	Category        ChargeCategory `gorm:"size:30;not null;index" json:"category"`
	StandardFee     float64        `gorm:"type:decimal(12,2);default:0" json:"standardFee"`
	RetainershipFee float64        `gorm:"type:decimal(12,2);default:0" json:"retainershipFee"`
	NHIAFee         float64        `gorm:"type:decimal(12,2);default:0" json:"nhiaFee"`
	KSCHMAFee       float64        `gorm:"type:decimal(12,2);default:0" json:"kschmaFee"`
	BasePrice       float64        `gorm:"type:decimal(12,2);not null" json:"basePrice"`
	IsActive        bool           `gorm:"default:true;index" json:"isActive"`
}
