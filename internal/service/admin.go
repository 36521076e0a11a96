package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"medica-server/internal/models"
)

// AdminService computes the admin dashboard and user listings.
type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminService(db *gorm.DB, now func() time.Time) *AdminService {
	return &AdminService{db: db, now: now}
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalDoctors       int64                `json:"totalDoctors"`
	TotalClients       int64                `json:"totalClients"`
	TotalAppointments  int64                `json:"totalAppointments"`
	RecentAppointments int64                `json:"recentAppointments"`
	PendingCount       int64                `json:"pendingCount"`
	Latest             []models.Appointment `json:"latestAppointments"`
}

const latestAppointments = 5

// Stats counts users and appointments. Recent covers appointments created in the last seven days.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats

	if err := db.Model(&models.Doctor{}).Count(&st.TotalDoctors).Error; err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&st.TotalClients).Error; err != nil {
		return nil, fmt.Errorf("counting clients: %w", err)
	}
	if err := db.Model(&models.Appointment{}).Count(&st.TotalAppointments).Error; err != nil {
		return nil, fmt.Errorf("counting appointments: %w", err)
	}
	since := s.now().AddDate(0, 0, -7)
	if err := db.Model(&models.Appointment{}).Where("created_at >= ?", since).Count(&st.RecentAppointments).Error; err != nil {
		return nil, fmt.Errorf("counting recent appointments: %w", err)
	}
	if err := db.Model(&models.Appointment{}).Where("status = ?", models.StatusPending).Count(&st.PendingCount).Error; err != nil {
		return nil, fmt.Errorf("counting pending appointments: %w", err)
	}

	err := db.Preload("Client").Preload("Doctor.User").
		Order("created_at DESC").
		Limit(latestAppointments).
		Find(&st.Latest).Error
	if err != nil {
		return nil, fmt.Errorf("loading latest appointments: %w", err)
	}
	return &st, nil
}

// UsersByRole lists users holding role, newest first.
func (s *AdminService) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	if !role.Valid() {
		return nil, invalid(fmt.Sprintf("role: unknown role %q", role))
	}
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
