package handlers

import (
	"time"

	"medica-server/internal/models"
)

// doctorView is the public face of a doctor. Contact details of the
// underlying account are left out.
type doctorView struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Name            string             `json:"name"`
	City            string             `json:"city,omitempty"`
	ProfilePicture  string             `json:"profilePicture,omitempty"`
	Speciality      *models.Speciality `json:"speciality,omitempty"`
	LicenseNumber   string             `json:"licenseNumber"`
	LicensePending  bool               `json:"licensePending"`
	ExperienceYears uint               `json:"experienceYears"`
	ConsultationFee float64            `json:"consultationFee"`
	Bio             string             `json:"bio,omitempty"`
	Education       string             `json:"education,omitempty"`
	ClinicName      string             `json:"clinicName,omitempty"`
	ClinicAddress   string             `json:"clinicAddress,omitempty"`
	IsAvailable     bool               `json:"isAvailable"`
	Rating          float64            `json:"rating"`
	TotalReviews    uint               `json:"totalReviews"`
	Availability    []availabilityView `json:"availability,omitempty"`
}

func newDoctorView(d *models.Doctor) doctorView {
	v := doctorView{
		ID:              d.ID,
		UserID:          d.UserID,
		City:            d.User.City,
		ProfilePicture:  d.User.ProfilePicture,
		Speciality:      d.Speciality,
		LicenseNumber:   d.LicenseNumber,
		LicensePending:  models.IsPlaceholderLicense(d.LicenseNumber),
		ExperienceYears: d.ExperienceYears,
		ConsultationFee: d.ConsultationFee,
		Bio:             d.Bio,
		Education:       d.Education,
		ClinicName:      d.ClinicName,
		ClinicAddress:   d.ClinicAddress,
		IsAvailable:     d.IsAvailable,
		Rating:          d.Rating,
		TotalReviews:    d.TotalReviews,
	}
	if d.User.ID != "" {
		v.Name = d.FullName()
	}
	for _, a := range d.Availabilities {
		v.Availability = append(v.Availability, newAvailabilityView(a))
	}
	return v
}

func newDoctorViews(ds []models.Doctor) []doctorView {
	out := make([]doctorView, 0, len(ds))
	for i := range ds {
		out = append(out, newDoctorView(&ds[i]))
	}
	return out
}

type availabilityView struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"dayOfWeek"`
	Day       string `json:"day"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsActive  bool   `json:"isActive"`
}

func newAvailabilityView(a models.DoctorAvailability) availabilityView {
	return availabilityView{
		ID:        a.ID,
		DayOfWeek: a.DayOfWeek,
		Day:       models.DayName(a.DayOfWeek),
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		IsActive:  a.IsActive,
	}
}

type reviewView struct {
	ID         string    `json:"id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	ClientName string    `json:"clientName"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newReviewViews(rs []models.Review) []reviewView {
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		v := reviewView{ID: r.ID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
		if r.Appointment != nil && r.Appointment.Client != nil {
			v.ClientName = r.Appointment.Client.FullName()
		}
		out = append(out, v)
	}
	return out
}
