package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/metrics"
	"medica-server/internal/models"
)

// BookingService creates appointments and records their outcome.
type BookingService struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Collector
	policy  models.TransitionPolicy
	slots   models.SlotGrid
	now     func() time.Time
}

func NewBookingService(db *gorm.DB, log *zap.Logger, m *metrics.Collector, policy models.TransitionPolicy) *BookingService {
	return &BookingService{db: db, log: log, metrics: m, policy: policy, slots: models.DefaultSlotGrid, now: time.Now}
}

// SetSlotGrid replaces the bookable start times.
func (s *BookingService) SetSlotGrid(g models.SlotGrid) {
	s.slots = g
}

// SetClock replaces the time source used to decide what "upcoming" means.
func (s *BookingService) SetClock(now func() time.Time) {
	s.now = now
}

type BookingInput struct {
	ClientID string
	DoctorID string
	Date     string
	Time     string
	Reason   string
}

// CreateAppointment books a slot for the client as a pending appointment.
// The slot's uniqueness is enforced by the store; losing a race yields ErrSlotTaken.
// Unknown doctors and doctors with IsAvailable off both yield ErrNotFound.
func (s *BookingService) CreateAppointment(ctx context.Context, in BookingInput) (*models.Appointment, error) {
	ctx, span := tracer.Start(ctx, "BookingService.CreateAppointment")
	defer span.End()
	span.SetAttributes(
		attribute.String("doctor.id", in.DoctorID),
		attribute.String("appointment.date", in.Date),
		attribute.String("appointment.time", in.Time),
	)

	var fields []string
	date, err := models.NormalizeDate(in.Date)
	if err != nil {
		fields = append(fields, "appointmentDate: "+err.Error())
	}
	clock, err := models.NormalizeClock(in.Time)
	switch {
	case err != nil:
		fields = append(fields, "appointmentTime: "+err.Error())
	case !s.slots.Contains(clock):
		fields = append(fields, "appointmentTime: "+clock+" is not a bookable slot ("+s.slots.String()+")")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	appt := models.Appointment{
		ClientID:        in.ClientID,
		DoctorID:        in.DoctorID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          models.StatusPending,
		Reason:          strings.TrimSpace(in.Reason),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctor models.Doctor
		err := tx.Where("id = ? AND is_available = ?", in.DoctorID, true).First(&doctor).Error
		if err != nil {
			return translateDBError(err, nil)
		}

		if err := tx.Create(&appt).Error; err != nil {
			return translateDBError(err, ErrSlotTaken)
		}

		var client models.User
		if err := tx.Select("id", "first_name", "last_name", "username").First(&client, "id = ?", in.ClientID).Error; err != nil {
			return translateDBError(err, nil)
		}
		name := client.FullName()
		if name == "" {
			name = client.Username
		}
		return notify(tx, doctor.UserID, models.NotificationAppointment, "New appointment request",
			fmt.Sprintf("%s requested an appointment on %s at %s.", name, date, clock))
	})
	if err != nil {
		if IsConflict(err) {
			s.metrics.SlotConflicts.Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.AppointmentsBooked.Inc()
	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("doctor_id", appt.DoctorID),
		zap.String("date", date),
		zap.String("time", clock),
	)
	return &appt, nil
}

// UpdateInput is a doctor's outcome for an appointment; nil means unchanged.
type UpdateInput struct {
	Status       *models.AppointmentStatus
	Notes        *string
	Diagnosis    *string
	Prescription *string
}

// UpdateAppointment records status and clinical notes. Only the doctor who owns
// the appointment may do so; for anyone else the appointment does not exist.
// Diagnosis and prescription require the resulting status to be completed.
func (s *BookingService) UpdateAppointment(ctx context.Context, doctorUserID, appointmentID string, in UpdateInput) (*models.Appointment, error) {
	ctx, span := tracer.Start(ctx, "BookingService.UpdateAppointment")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", appointmentID))

	var appt models.Appointment
	var from models.AppointmentStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := forUpdate(tx).
			Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
			Where("appointments.id = ? AND doctors.user_id = ?", appointmentID, doctorUserID).
			First(&appt).Error
		if err != nil {
			return translateDBError(err, nil)
		}
		from = appt.Status

		to := appt.Status
		if in.Status != nil {
			to = *in.Status
			if !to.Valid() {
				return invalid(fmt.Sprintf("status: unknown status %q", to))
			}
			if !s.policy.Allows(from, to) {
				return ErrInvalidTransition
			}
		}

		updates := map[string]any{"status": to}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		clinical := (in.Diagnosis != nil && *in.Diagnosis != "") || (in.Prescription != nil && *in.Prescription != "")
		if clinical && to != models.StatusCompleted {
			return invalid("diagnosis: only recorded on completed appointments")
		}
		if in.Diagnosis != nil {
			updates["diagnosis"] = *in.Diagnosis
		}
		if in.Prescription != nil {
			updates["prescription"] = *in.Prescription
		}
		if err := tx.Model(&appt).Updates(updates).Error; err != nil {
			return fmt.Errorf("updating appointment: %w", err)
		}
		appt.Status = to

		if from == to {
			return nil
		}
		return notify(tx, appt.ClientID, models.NotificationAppointment, "Appointment "+statusLabel(to),
			fmt.Sprintf("Your appointment on %s at %s is now %s.", appt.AppointmentDate, appt.AppointmentTime, statusLabel(to)))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if from != appt.Status {
		s.metrics.StatusUpdates.WithLabelValues(string(appt.Status)).Inc()
	}
	s.log.Info("appointment updated",
		zap.String("appointment_id", appt.ID),
		zap.String("from", string(from)),
		zap.String("to", string(appt.Status)),
	)
	return s.load(ctx, appt.ID)
}

func statusLabel(st models.AppointmentStatus) string {
	if st == models.StatusNoShow {
		return "no show"
	}
	return string(st)
}

func (s *BookingService) load(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Doctor.User").
		Preload("Doctor.Speciality").
		Preload("Review").
		First(&appt, "id = ?", id).Error
	if err != nil {
		return nil, translateDBError(err, nil)
	}
	return &appt, nil
}

// GetAppointment returns an appointment visible to the caller: its client, its
// doctor, or an admin. Everyone else gets ErrNotFound.
func (s *BookingService) GetAppointment(ctx context.Context, userID string, role models.Role, id string) (*models.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch role {
	case models.RoleAdmin:
		return appt, nil
	case models.RoleClient:
		if appt.ClientID == userID {
			return appt, nil
		}
	case models.RoleDoctor:
		if appt.Doctor != nil && appt.Doctor.UserID == userID {
			return appt, nil
		}
	}
	return nil, ErrNotFound
}

// ListClientAppointments returns the client's appointments, latest first.
func (s *BookingService) ListClientAppointments(ctx context.Context, clientID string) ([]models.Appointment, error) {
	var out []models.Appointment
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Preload("Doctor.User").
		Preload("Doctor.Speciality").
		Preload("Review").
		Order("appointment_date DESC, appointment_time DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing client appointments: %w", err)
	}
	return out, nil
}

// ListUpcomingForDoctor returns the doctor's pending and confirmed appointments
// from today on, soonest first.
func (s *BookingService) ListUpcomingForDoctor(ctx context.Context, doctorUserID string) ([]models.Appointment, error) {
	today := s.now().Format(models.DateLayout)
	var out []models.Appointment
	err := s.db.WithContext(ctx).
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Where("doctors.user_id = ?", doctorUserID).
		Where("appointments.appointment_date >= ?", today).
		Where("appointments.status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}).
		Preload("Client").
		Order("appointments.appointment_date ASC, appointments.appointment_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctor appointments: %w", err)
	}
	return out, nil
}
