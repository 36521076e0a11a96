package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/metrics"
	"medica-server/internal/models"
)

// ReviewService stores reviews and keeps each doctor's rating in step with them.
type ReviewService struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewReviewService(db *gorm.DB, log *zap.Logger, m *metrics.Collector) *ReviewService {
	return &ReviewService{db: db, log: log, metrics: m}
}

// RatingSummary is a doctor's aggregate over all reviews.
type RatingSummary struct {
	Rating       float64 `json:"rating"`
	TotalReviews uint    `json:"totalReviews"`
}

// CreateReview stores the client's review of a completed appointment and
// recomputes the doctor's rating in the same transaction.
func (s *ReviewService) CreateReview(ctx context.Context, clientID, appointmentID string, rating int, comment string) (*models.Review, error) {
	ctx, span := tracer.Start(ctx, "ReviewService.CreateReview")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", appointmentID), attribute.Int("review.rating", rating))

	if rating < models.MinRating || rating > models.MaxRating {
		return nil, invalid(fmt.Sprintf("rating: must be between %d and %d", models.MinRating, models.MaxRating))
	}

	review := models.Review{AppointmentID: appointmentID, Rating: rating, Comment: strings.TrimSpace(comment)}
	var summary RatingSummary
	var doctor models.Doctor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		err := forUpdate(tx).
			Where("id = ? AND client_id = ? AND status = ?", appointmentID, clientID, models.StatusCompleted).
			First(&appt).Error
		if err != nil {
			return translateDBError(err, nil)
		}

		// The doctor row lock serialises concurrent recomputations.
		if err := forUpdate(tx).First(&doctor, "id = ?", appt.DoctorID).Error; err != nil {
			return translateDBError(err, nil)
		}

		if err := tx.Create(&review).Error; err != nil {
			return translateDBError(err, ErrAlreadyReviewed)
		}

		summary, err = RecomputeDoctorRating(tx, doctor.ID)
		if err != nil {
			return err
		}
		return notify(tx, doctor.UserID, models.NotificationSystem, "New review",
			fmt.Sprintf("You received a %d star review. Your rating is now %.2f.", rating, summary.Rating))
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ReviewsSubmitted.Inc()
	s.log.Info("review stored",
		zap.String("review_id", review.ID),
		zap.String("doctor_id", doctor.ID),
		zap.Float64("rating", summary.Rating),
		zap.Uint("total_reviews", summary.TotalReviews),
	)
	return &review, nil
}

// RecomputeDoctorRating derives the doctor's mean rating (two decimals) and
// review count from all stored reviews and writes them to the doctor row.
// Rounding happens in SQL so MySQL rounds the exact DECIMAL mean half-up.
// It must run inside the transaction that changed the reviews.
func RecomputeDoctorRating(tx *gorm.DB, doctorID string) (RatingSummary, error) {
	var agg struct {
		Average float64
		Total   int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(ROUND(AVG(reviews.rating), 2), 0) AS average, COUNT(reviews.id) AS total").
		Joins("JOIN appointments ON appointments.id = reviews.appointment_id").
		Where("appointments.doctor_id = ?", doctorID).
		Scan(&agg).Error
	if err != nil {
		return RatingSummary{}, fmt.Errorf("aggregating reviews: %w", err)
	}

	summary := RatingSummary{
		Rating:       agg.Average,
		TotalReviews: uint(agg.Total),
	}
	err = tx.Model(&models.Doctor{}).
		Where("id = ?", doctorID).
		Updates(map[string]any{"rating": summary.Rating, "total_reviews": summary.TotalReviews}).Error
	if err != nil {
		return RatingSummary{}, fmt.Errorf("updating doctor rating: %w", err)
	}
	return summary, nil
}
