package models

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no strict transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// TransitionPolicy decides which status changes a doctor may record.
type TransitionPolicy interface {
	Allows(from, to AppointmentStatus) bool
}

// PermissiveTransitions lets any status be replaced by any other.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allows(from, to AppointmentStatus) bool {
	return from.Valid() && to.Valid()
}

// StrictTransitions enforces
//
//	pending   → confirmed | cancelled
//	confirmed → completed | cancelled | no_show
//
// and nothing out of a terminal state. Keeping the current status is always allowed.
type StrictTransitions struct{}

var strictGraph = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func (StrictTransitions) Allows(from, to AppointmentStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range strictGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment is a booking of one doctor slot by one client.
// (DoctorID, AppointmentDate, AppointmentTime) is unique: a slot is booked at most once.
type Appointment struct {
	BaseModel
	ClientID        string            `gorm:"size:36;not null;index" json:"clientId"`
	DoctorID        string            `gorm:"size:36;not null;uniqueIndex:idx_appointment_slot,priority:1" json:"doctorId"`
	AppointmentDate string            `gorm:"size:10;not null;uniqueIndex:idx_appointment_slot,priority:2;index" json:"appointmentDate"`
	AppointmentTime string            `gorm:"size:5;not null;uniqueIndex:idx_appointment_slot,priority:3" json:"appointmentTime"`
	Status          AppointmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Reason          string            `gorm:"type:text" json:"reason,omitempty"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	Diagnosis       string            `gorm:"type:text" json:"diagnosis,omitempty"`
	Prescription    string            `gorm:"type:text" json:"prescription,omitempty"`

	// Relations
	Client *User   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Doctor *Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Review *Review `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"review,omitempty"`
}

// ScheduledAt combines the stored date and time in loc.
func (a *Appointment) ScheduledAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, a.AppointmentDate+" "+a.AppointmentTime, loc)
}

// IsUpcoming reports whether the appointment starts after now.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	at, err := a.ScheduledAt(now.Location())
	if err != nil {
		return false
	}
	return at.After(now)
}

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// NormalizeDate parses s as a calendar date and returns its canonical form.
func NormalizeDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d.Format(DateLayout), nil
}

// NormalizeClock parses s as a wall-clock time (HH:MM, or HH:MM:00) and returns HH:MM.
// Non-zero seconds are rejected so two distinct inputs never share a slot.
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return "", fmt.Errorf("invalid time %q: seconds are not allowed", s)
		}
		return t.Format(ClockLayout), nil
	}
	return "", fmt.Errorf("invalid time %q: expected HH:MM", s)
}
