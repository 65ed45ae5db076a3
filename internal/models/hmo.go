package models

// HMO represents an insurer that covers patients on an insured provider tier.
type HMO struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Code         string `gorm:"uniqueIndex;size:50;not null" json:"code"`
	ContactEmail string `gorm:"size:255" json:"contactEmail,omitempty"`
	ContactPhone string `gorm:"size:50" json:"contactPhone,omitempty"`
	Address      string `gorm:"size:255" json:"address,omitempty"`
	IsActive     bool   `gorm:"default:true" json:"isActive"`

	// Relations (not always preloaded)
	Patients []Patient `gorm:"foreignKey:HMOID" json:"-"`
	Claims   []Claim   `gorm:"foreignKey:HMOID" json:"-"`
}
