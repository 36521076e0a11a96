// Package service implements the booking, rating and account operations on top
// of the relational store. Every mutating operation runs in one transaction.
package service

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medica-server/internal/config"
	"medica-server/internal/metrics"
	"medica-server/internal/models"
)

var tracer = otel.Tracer("medica-server/internal/service")

// Services bundles every service sharing one database handle.
type Services struct {
	Accounts      *AccountService
	Doctors       *DoctorService
	Booking       *BookingService
	Reviews       *ReviewService
	Notifications *NotificationService
	Admin         *AdminService
}

// New wires all services. It fails only on a malformed slot grid.
func New(db *gorm.DB, log *zap.Logger, m *metrics.Collector, cfg config.BookingConfig) (*Services, error) {
	var policy models.TransitionPolicy = models.PermissiveTransitions{}
	if cfg.StrictStatusTransitions {
		policy = models.StrictTransitions{}
	}
	grid, err := models.NewSlotGrid(cfg.FirstSlot, cfg.LastSlot, cfg.SlotMinutes)
	if err != nil {
		return nil, fmt.Errorf("booking slot grid: %w", err)
	}

	booking := NewBookingService(db, log, m, policy)
	booking.SetSlotGrid(grid)
	return &Services{
		Accounts:      NewAccountService(db, log, m),
		Doctors:       NewDoctorService(db, log),
		Booking:       booking,
		Reviews:       NewReviewService(db, log, m),
		Notifications: NewNotificationService(db),
		Admin:         NewAdminService(db, time.Now),
	}, nil
}

// forUpdate turns the next read into a locking read on engines with row locks.
// SQLite serialises writers on the whole database instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
