package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/models"
)

// DoctorService serves the public directory and the doctor's own profile and schedule.
type DoctorService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDoctorService(db *gorm.DB, log *zap.Logger) *DoctorService {
	return &DoctorService{db: db, log: log}
}

// DoctorFilter narrows Browse. Empty fields do not filter.
type DoctorFilter struct {
	SpecialityID string
	City         string
	Name         string
}

// likeEscaper neutralises LIKE wildcards. '!' is used as the escape character
// because a backslash needs different quoting in MySQL and SQLite.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a case-insensitive substring pattern for use with ESCAPE '!'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// Browse lists available doctors matching every non-empty filter, best rated first.
// City and name are case-insensitive substring matches; name matches first or last name.
func (s *DoctorService) Browse(ctx context.Context, f DoctorFilter) ([]models.Doctor, error) {
	q := s.db.WithContext(ctx).
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("doctors.is_available = ?", true)

	if f.SpecialityID != "" {
		q = q.Where("doctors.speciality_id = ?", f.SpecialityID)
	}
	if strings.TrimSpace(f.City) != "" {
		q = q.Where("LOWER(users.city) LIKE ? ESCAPE '!'", likePattern(f.City))
	}
	if strings.TrimSpace(f.Name) != "" {
		p := likePattern(f.Name)
		q = q.Where("(LOWER(users.first_name) LIKE ? ESCAPE '!' OR LOWER(users.last_name) LIKE ? ESCAPE '!')", p, p)
	}

	var doctors []models.Doctor
	err := q.Preload("User").Preload("Speciality").
		Order("doctors.rating DESC, users.first_name ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("browsing doctors: %w", err)
	}
	return doctors, nil
}

// TopDoctors returns up to limit available doctors by rating.
func (s *DoctorService) TopDoctors(ctx context.Context, limit int) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.db.WithContext(ctx).
		Where("is_available = ?", true).
		Preload("User").Preload("Speciality").
		Order("rating DESC, total_reviews DESC").
		Limit(limit).
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("loading top doctors: %w", err)
	}
	return doctors, nil
}

// Specialities lists specialities by name. limit <= 0 means all.
func (s *DoctorService) Specialities(ctx context.Context, limit int) ([]models.Speciality, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Speciality
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing specialities: %w", err)
	}
	return out, nil
}

// Get loads a doctor with user, speciality and active availability windows.
func (s *DoctorService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	var d models.Doctor
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Speciality").
		Preload("Availabilities", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("day_of_week ASC, start_time ASC")
		}).
		First(&d, "id = ?", id).Error
	if err != nil {
		return nil, translateDBError(err, nil)
	}
	return &d, nil
}

// Reviews returns the reviews left on the doctor's appointments, newest first.
func (s *DoctorService) Reviews(ctx context.Context, doctorID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Joins("JOIN appointments ON appointments.id = reviews.appointment_id").
		Where("appointments.doctor_id = ?", doctorID).
		Preload("Appointment.Client").
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("loading reviews: %w", err)
	}
	return reviews, nil
}

// ProfileForUser loads the doctor profile owned by userID.
func (s *DoctorService) ProfileForUser(ctx context.Context, userID string) (*models.Doctor, error) {
	var d models.Doctor
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Speciality").
		Where("user_id = ?", userID).
		First(&d).Error
	if err != nil {
		return nil, translateDBError(err, nil)
	}
	return &d, nil
}

// DoctorProfileInput carries editable doctor fields; nil means unchanged.
type DoctorProfileInput struct {
	SpecialityID    *string
	LicenseNumber   *string
	ExperienceYears *uint
	ConsultationFee *float64
	Bio             *string
	Education       *string
	ClinicName      *string
	ClinicAddress   *string
	IsAvailable     *bool
}

// UpdateProfile edits the caller's doctor profile. Rating and review count are
// never touched here.
func (s *DoctorService) UpdateProfile(ctx context.Context, userID string, in DoctorProfileInput) (*models.Doctor, error) {
	updates := map[string]any{}
	var fields []string

	if in.LicenseNumber != nil {
		license := strings.TrimSpace(*in.LicenseNumber)
		switch {
		case license == "":
			fields = append(fields, "licenseNumber: required")
		case models.IsPlaceholderLicense(license):
			fields = append(fields, "licenseNumber: prefix "+models.PlaceholderLicensePrefix+" is reserved")
		default:
			updates["license_number"] = license
		}
	}
	if in.ConsultationFee != nil {
		if *in.ConsultationFee < 0 {
			fields = append(fields, "consultationFee: must not be negative")
		} else {
			updates["consultation_fee"] = *in.ConsultationFee
		}
	}
	if in.ExperienceYears != nil {
		updates["experience_years"] = *in.ExperienceYears
	}
	if in.Bio != nil {
		updates["bio"] = *in.Bio
	}
	if in.Education != nil {
		updates["education"] = *in.Education
	}
	if in.ClinicName != nil {
		updates["clinic_name"] = strings.TrimSpace(*in.ClinicName)
	}
	if in.ClinicAddress != nil {
		updates["clinic_address"] = *in.ClinicAddress
	}
	if in.IsAvailable != nil {
		updates["is_available"] = *in.IsAvailable
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.Doctor
		if err := forUpdate(tx).Where("user_id = ?", userID).First(&d).Error; err != nil {
			return translateDBError(err, nil)
		}

		if in.SpecialityID != nil {
			if *in.SpecialityID == "" {
				updates["speciality_id"] = nil
			} else {
				var sp models.Speciality
				err := tx.Select("id").First(&sp, "id = ?", *in.SpecialityID).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("specialityId: unknown speciality")
				}
				if err != nil {
					return fmt.Errorf("loading speciality: %w", err)
				}
				updates["speciality_id"] = sp.ID
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&d).Updates(updates).Error; err != nil {
			return translateDBError(err, ErrDuplicateLicense)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("doctor profile updated", zap.String("user_id", userID))
	return s.ProfileForUser(ctx, userID)
}

// ListAvailability returns every window of the caller's schedule.
func (s *DoctorService) ListAvailability(ctx context.Context, userID string) ([]models.DoctorAvailability, error) {
	d, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []models.DoctorAvailability
	err = s.db.WithContext(ctx).
		Where("doctor_id = ?", d.ID).
		Order("day_of_week ASC, start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return out, nil
}

// AvailabilityInput is one weekly window; days run Monday (0) to Sunday (6).
type AvailabilityInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	IsActive  bool
}

// AddAvailability appends a window to the caller's schedule.
func (s *DoctorService) AddAvailability(ctx context.Context, userID string, in AvailabilityInput) (*models.DoctorAvailability, error) {
	var fields []string
	if models.DayName(in.DayOfWeek) == "" {
		fields = append(fields, "dayOfWeek: must be between 0 (Monday) and 6 (Sunday)")
	}
	start, err := models.NormalizeClock(in.StartTime)
	if err != nil {
		fields = append(fields, "startTime: "+err.Error())
	}
	end, err := models.NormalizeClock(in.EndTime)
	if err != nil {
		fields = append(fields, "endTime: "+err.Error())
	}
	// HH:MM strings order the same way as the times they denote.
	if start != "" && end != "" && end <= start {
		fields = append(fields, "endTime: must be after startTime")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	d, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	window := models.DoctorAvailability{
		DoctorID:  d.ID,
		DayOfWeek: in.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		IsActive:  in.IsActive,
	}
	if err := s.db.WithContext(ctx).Create(&window).Error; err != nil {
		return nil, translateDBError(err, ErrDuplicateWindow)
	}
	return &window, nil
}

// DeleteAvailability removes one of the caller's windows. Windows of other
// doctors are not found.
func (s *DoctorService) DeleteAvailability(ctx context.Context, userID, windowID string) error {
	d, err := s.ProfileForUser(ctx, userID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", windowID, d.ID).
		Delete(&models.DoctorAvailability{})
	if res.Error != nil {
		return fmt.Errorf("deleting availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
