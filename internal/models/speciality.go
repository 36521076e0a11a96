package models

// Speciality is a medical field a doctor practises in.
type Speciality struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Icon        string `gorm:"size:50;default:'fa-stethoscope'" json:"icon"`
}

func (Speciality) TableName() string {
	return "specialities"
}
