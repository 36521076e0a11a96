package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medica-server/internal/models"
	"medica-server/internal/testutil"
)

func TestAdminStats(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "root", models.RoleAdmin)
	c1 := testutil.CreateUser(t, f.db, "c1", models.RoleClient)
	testutil.CreateUser(t, f.db, "c2", models.RoleClient)
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-1")

	// Stats uses the real creation time, so its clock must be now.
	f.svc.Admin.now = func() time.Time { return time.Now() }

	var ids []string
	for _, clock := range []string{"09:00", "10:00", "11:00"} {
		a, err := f.svc.Booking.CreateAppointment(ctx, BookingInput{ClientID: c1.ID, DoctorID: doctor.ID, Date: "2024-01-10", Time: clock})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}
	_, err := f.svc.Booking.UpdateAppointment(ctx, doctor.UserID, ids[0], UpdateInput{Status: ptr(models.StatusConfirmed)})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Appointment{}).Where("id = ?", ids[1]).
		Update("created_at", time.Now().AddDate(0, 0, -30)).Error)

	st, err := f.svc.Admin.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, st.TotalDoctors)
	assert.EqualValues(t, 2, st.TotalClients)
	assert.EqualValues(t, 3, st.TotalAppointments)
	assert.EqualValues(t, 2, st.RecentAppointments)
	assert.EqualValues(t, 2, st.PendingCount)
	require.Len(t, st.Latest, 3)
	assert.Equal(t, ids[1], st.Latest[2].ID)
	require.NotNil(t, st.Latest[0].Client)
}

func TestUsersByRole(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	testutil.CreateUser(t, f.db, "c1", models.RoleClient)
	testutil.CreateDoctor(t, f.db, "dave", "LIC-1")

	clients, err := f.svc.Admin.UsersByRole(ctx, models.RoleClient)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "c1", clients[0].Username)

	doctors, err := f.svc.Admin.UsersByRole(ctx, models.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctors, 1)

	_, err = f.svc.Admin.UsersByRole(ctx, "patient")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
