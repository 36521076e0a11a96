package models

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a client's rating of a completed appointment. One per appointment.
type Review struct {
	BaseModel
	AppointmentID string `gorm:"uniqueIndex;size:36;not null" json:"appointmentId"`
	Rating        int    `gorm:"not null" json:"rating"`
	Comment       string `gorm:"type:text" json:"comment,omitempty"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
