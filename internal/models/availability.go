package models

import "time"

// Weekday numbering starts at Monday = 0.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English name for a day index, or "" when out of range.
func DayName(day int) string {
	if day < Monday || day > Sunday {
		return ""
	}
	return dayNames[day]
}

// WeekdayIndex converts a time.Weekday into the Monday-based index.
func WeekdayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// DoctorAvailability is one weekly window in a doctor's schedule.
type DoctorAvailability struct {
	BaseModel
	DoctorID  string `gorm:"size:36;not null;uniqueIndex:idx_availability_slot,priority:1" json:"doctorId"`
	DayOfWeek int    `gorm:"not null;uniqueIndex:idx_availability_slot,priority:2" json:"dayOfWeek"`
	StartTime string `gorm:"size:5;not null;uniqueIndex:idx_availability_slot,priority:3" json:"startTime"`
	EndTime   string `gorm:"size:5;not null" json:"endTime"`
	IsActive  bool   `gorm:"not null" json:"isActive"`

	Doctor Doctor `gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DoctorAvailability) TableName() string {
	return "doctor_availability"
}
