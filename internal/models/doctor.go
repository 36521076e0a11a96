package models

import (
	"strings"
)

// PlaceholderLicensePrefix marks license numbers generated before the doctor
// supplies a real one. Real license numbers may never start with it.
const PlaceholderLicensePrefix = "PENDING-"

// PlaceholderLicense returns the reserved license value for userID.
func PlaceholderLicense(userID string) string {
	return PlaceholderLicensePrefix + userID
}

// IsPlaceholderLicense reports whether license uses the reserved prefix.
func IsPlaceholderLicense(license string) bool {
	return strings.HasPrefix(strings.ToUpper(license), PlaceholderLicensePrefix)
}

// Doctor is the medical profile owned by a user with the doctor role.
// Rating and TotalReviews are maintained by the review workflow only.
type Doctor struct {
	BaseModel
	UserID          string  `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	SpecialityID    *string `gorm:"size:36;index" json:"specialityId,omitempty"`
	LicenseNumber   string  `gorm:"uniqueIndex;size:50;not null" json:"licenseNumber"`
	ExperienceYears uint    `gorm:"default:0" json:"experienceYears"`
	ConsultationFee float64 `gorm:"type:decimal(10,2);default:0" json:"consultationFee"`
	Bio             string  `gorm:"type:text" json:"bio,omitempty"`
	Education       string  `gorm:"type:text" json:"education,omitempty"`
	ClinicName      string  `gorm:"size:200" json:"clinicName,omitempty"`
	ClinicAddress   string  `gorm:"type:text" json:"clinicAddress,omitempty"`
	IsAvailable     bool    `gorm:"not null;index" json:"isAvailable"`
	Rating          float64 `gorm:"type:decimal(3,2);default:0" json:"rating"`
	TotalReviews    uint    `gorm:"default:0" json:"totalReviews"`

	User           User                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Speciality     *Speciality          `gorm:"foreignKey:SpecialityID;constraint:OnDelete:SET NULL" json:"speciality,omitempty"`
	Availabilities []DoctorAvailability `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"availabilities,omitempty"`
	Appointments   []Appointment        `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullName is the display name with the doctor title.
func (d *Doctor) FullName() string {
	return "Dr. " + d.User.FullName()
}
