package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medica-server/internal/models"
	"medica-server/internal/testutil"
)

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestDeletingAnAppointmentRemovesItsReview(t *testing.T) {
	f := newFixture(t, false)
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-100")
	client, appt := completedAppointment(t, f, doctor, 1)
	_, err := f.svc.Reviews.CreateReview(context.Background(), client.ID, appt.ID, 4, "")
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&models.Appointment{}, "id = ?", appt.ID).Error)

	assert.Zero(t, countRows(t, f.db, &models.Review{}, "appointment_id = ?", appt.ID))
}

func TestDeletingAClientRemovesTheirRows(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-100")
	client, appt := completedAppointment(t, f, doctor, 1)
	_, err := f.svc.Reviews.CreateReview(ctx, client.ID, appt.ID, 5, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.Accounts.StoreRefreshToken(ctx, client.ID, "token", fixedNow.AddDate(1, 0, 0)))
	require.NotZero(t, countRows(t, f.db, &models.Notification{}, "user_id = ?", client.ID))

	require.NoError(t, f.db.Delete(&models.User{}, "id = ?", client.ID).Error)

	assert.Zero(t, countRows(t, f.db, &models.Appointment{}, "client_id = ?", client.ID))
	assert.Zero(t, countRows(t, f.db, &models.Review{}, "appointment_id = ?", appt.ID))
	assert.Zero(t, countRows(t, f.db, &models.Notification{}, "user_id = ?", client.ID))
	assert.Zero(t, countRows(t, f.db, &models.RefreshToken{}, "user_id = ?", client.ID))
	// The doctor survives.
	assert.EqualValues(t, 1, countRows(t, f.db, &models.Doctor{}, "id = ?", doctor.ID))
}

func TestDeletingADoctorAccountRemovesTheProfile(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-100")
	client, appt := completedAppointment(t, f, doctor, 1)
	_, err := f.svc.Doctors.AddAvailability(ctx, doctor.UserID, AvailabilityInput{
		DayOfWeek: models.Monday, StartTime: "09:00", EndTime: "12:00", IsActive: true,
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&models.User{}, "id = ?", doctor.UserID).Error)

	assert.Zero(t, countRows(t, f.db, &models.Doctor{}, "id = ?", doctor.ID))
	assert.Zero(t, countRows(t, f.db, &models.DoctorAvailability{}, "doctor_id = ?", doctor.ID))
	assert.Zero(t, countRows(t, f.db, &models.Appointment{}, "id = ?", appt.ID))
	assert.Zero(t, countRows(t, f.db, &models.Notification{}, "user_id = ?", doctor.UserID))
	// The client account itself is kept.
	assert.EqualValues(t, 1, countRows(t, f.db, &models.User{}, "id = ?", client.ID))
}
