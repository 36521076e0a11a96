package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medica-server/internal/models"
	"medica-server/internal/testutil"
)

func seedSpeciality(t *testing.T, f *fixture, name string) *models.Speciality {
	t.Helper()
	sp := &models.Speciality{Name: name, Icon: "fa-heart-pulse"}
	require.NoError(t, f.db.Create(sp).Error)
	return sp
}

func TestBrowseFilters(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	cardio := seedSpeciality(t, f, "Cardiology")
	derma := seedSpeciality(t, f, "Dermatology")

	anna := testutil.CreateDoctor(t, f.db, "anna", "LIC-1")
	bruno := testutil.CreateDoctor(t, f.db, "bruno", "LIC-2")
	carla := testutil.CreateDoctor(t, f.db, "carla", "LIC-3")
	hidden := testutil.CreateDoctor(t, f.db, "hidden", "LIC-4")

	set := func(d *models.Doctor, sp *models.Speciality, city string, rating float64) {
		require.NoError(t, f.db.Model(&models.Doctor{}).Where("id = ?", d.ID).
			Updates(map[string]any{"speciality_id": sp.ID, "rating": rating}).Error)
		require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", d.UserID).Update("city", city).Error)
	}
	set(anna, cardio, "Porto", 4.5)
	set(bruno, cardio, "Lisbon", 4.9)
	set(carla, derma, "Lisbon", 3.0)
	set(hidden, cardio, "Lisbon", 5.0)
	require.NoError(t, f.db.Model(&models.Doctor{}).Where("id = ?", hidden.ID).Update("is_available", false).Error)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", carla.UserID).Update("last_name", "Annaberg").Error)

	ids := func(ds []models.Doctor) []string {
		out := make([]string, len(ds))
		for i, d := range ds {
			out[i] = d.ID
		}
		return out
	}

	tests := []struct {
		name   string
		filter DoctorFilter
		want   []string
	}{
		{"all available by rating", DoctorFilter{}, []string{bruno.ID, anna.ID, carla.ID}},
		{"speciality", DoctorFilter{SpecialityID: cardio.ID}, []string{bruno.ID, anna.ID}},
		{"city is case-insensitive substring", DoctorFilter{City: "lis"}, []string{bruno.ID, carla.ID}},
		{"name matches first or last name", DoctorFilter{Name: "ANNA"}, []string{anna.ID, carla.ID}},
		{"filters combine", DoctorFilter{SpecialityID: cardio.ID, City: "LISBON"}, []string{bruno.ID}},
		{"no match", DoctorFilter{Name: "zed"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Doctors.Browse(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	got, err := f.svc.Doctors.Browse(ctx, DoctorFilter{SpecialityID: derma.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Speciality)
	assert.Equal(t, "Dermatology", got[0].Speciality.Name)
	assert.Equal(t, "carla", got[0].User.FirstName)
}

func TestBrowseMatchesWildcardCharactersLiterally(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	alice := testutil.CreateDoctor(t, f.db, "alice", "LIC-1")
	bob := testutil.CreateDoctor(t, f.db, "bob", "LIC-2")
	oneil := testutil.CreateDoctor(t, f.db, "oneil", "LIC-3")
	bang := testutil.CreateDoctor(t, f.db, "bang", "LIC-4")
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", oneil.UserID).
		Updates(map[string]any{"last_name": "O_Neil", "city": "100% Town"}).Error)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", bang.UserID).Update("first_name", "Wow!Bang").Error)
	require.NoError(t, f.db.Model(&models.User{}).Where("id IN ?", []string{alice.UserID, bob.UserID}).Update("city", "Porto").Error)

	tests := []struct {
		name   string
		filter DoctorFilter
		want   []string
	}{
		{"percent is not a wildcard", DoctorFilter{Name: "%"}, nil},
		{"underscore is not a wildcard", DoctorFilter{Name: "_"}, []string{oneil.ID}},
		{"underscore inside a name", DoctorFilter{Name: "o_n"}, []string{oneil.ID}},
		{"underscore does not match other characters", DoctorFilter{Name: "o_b"}, nil},
		{"percent in city", DoctorFilter{City: "100%"}, []string{oneil.ID}},
		{"percent in city does not span", DoctorFilter{City: "1%n"}, nil},
		{"escape character itself", DoctorFilter{Name: "w!b"}, []string{bang.ID}},
		{"plain substring still works", DoctorFilter{Name: "ali"}, []string{alice.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Doctors.Browse(ctx, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, d := range got {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTopDoctorsAndSpecialities(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	for _, name := range []string{"Neurology", "Cardiology", "Pediatrics"} {
		seedSpeciality(t, f, name)
	}
	low := testutil.CreateDoctor(t, f.db, "low", "LIC-1")
	high := testutil.CreateDoctor(t, f.db, "high", "LIC-2")
	require.NoError(t, f.db.Model(&models.Doctor{}).Where("id = ?", high.ID).Update("rating", 4.8).Error)

	top, err := f.svc.Doctors.TopDoctors(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, high.ID, top[0].ID)
	assert.NotEqual(t, low.ID, top[0].ID)

	specs, err := f.svc.Doctors.Specialities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Cardiology", specs[0].Name)
	assert.Equal(t, "Neurology", specs[1].Name)
}

func TestUpdateDoctorProfile(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	cardio := seedSpeciality(t, f, "Cardiology")
	doctor := testutil.CreateDoctor(t, f.db, "dave", "PENDING-x")
	testutil.CreateDoctor(t, f.db, "erin", "LIC-TAKEN")
	require.NoError(t, f.db.Model(&models.Doctor{}).Where("id = ?", doctor.ID).
		Updates(map[string]any{"rating": 4.25, "total_reviews": 4}).Error)

	got, err := f.svc.Doctors.UpdateProfile(ctx, doctor.UserID, DoctorProfileInput{
		SpecialityID:    ptr(cardio.ID),
		LicenseNumber:   ptr(" LIC-42 "),
		ConsultationFee: ptr(80.5),
		IsAvailable:     ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "LIC-42", got.LicenseNumber)
	assert.InDelta(t, 80.5, got.ConsultationFee, 0.001)
	assert.False(t, got.IsAvailable)
	require.NotNil(t, got.Speciality)
	assert.Equal(t, "Cardiology", got.Speciality.Name)
	assert.InDelta(t, 4.25, got.Rating, 0.001)
	assert.EqualValues(t, 4, got.TotalReviews)

	tests := []struct {
		name  string
		in    DoctorProfileInput
		check func(t *testing.T, err error)
	}{
		{"reserved prefix", DoctorProfileInput{LicenseNumber: ptr("pending-123")}, func(t *testing.T, err error) {
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		}},
		{"empty license", DoctorProfileInput{LicenseNumber: ptr("  ")}, func(t *testing.T, err error) {
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		}},
		{"negative fee", DoctorProfileInput{ConsultationFee: ptr(-1.0)}, func(t *testing.T, err error) {
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		}},
		{"unknown speciality", DoctorProfileInput{SpecialityID: ptr("missing")}, func(t *testing.T, err error) {
			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		}},
		{"duplicate license", DoctorProfileInput{LicenseNumber: ptr("LIC-TAKEN")}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrDuplicateLicense)
			assert.ErrorIs(t, err, ErrConflict)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Doctors.UpdateProfile(ctx, doctor.UserID, tt.in)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	client := testutil.CreateUser(t, f.db, "carol", models.RoleClient)
	_, err = f.svc.Doctors.UpdateProfile(ctx, client.ID, DoctorProfileInput{Bio: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvailabilityWindows(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-1")
	other := testutil.CreateDoctor(t, f.db, "olga", "LIC-2")

	w, err := f.svc.Doctors.AddAvailability(ctx, doctor.UserID, AvailabilityInput{
		DayOfWeek: models.Wednesday, StartTime: "09:00:00", EndTime: "12:30", IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "09:00", w.StartTime)

	_, err = f.svc.Doctors.AddAvailability(ctx, doctor.UserID, AvailabilityInput{
		DayOfWeek: models.Monday, StartTime: "14:00", EndTime: "18:00", IsActive: false,
	})
	require.NoError(t, err)

	_, err = f.svc.Doctors.AddAvailability(ctx, doctor.UserID, AvailabilityInput{DayOfWeek: models.Wednesday, StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrDuplicateWindow)

	invalidInputs := []AvailabilityInput{
		{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: -1, StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00"},
		{DayOfWeek: 1, StartTime: "nine", EndTime: "10:00"},
	}
	for _, in := range invalidInputs {
		_, err := f.svc.Doctors.AddAvailability(ctx, doctor.UserID, in)
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve, "input %+v", in)
	}

	windows, err := f.svc.Doctors.ListAvailability(ctx, doctor.UserID)
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, models.Monday, windows[0].DayOfWeek)
	assert.False(t, windows[0].IsActive)

	detail, err := f.svc.Doctors.Get(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, detail.Availabilities, 1)
	assert.Equal(t, models.Wednesday, detail.Availabilities[0].DayOfWeek)

	assert.ErrorIs(t, f.svc.Doctors.DeleteAvailability(ctx, other.UserID, w.ID), ErrNotFound)
	require.NoError(t, f.svc.Doctors.DeleteAvailability(ctx, doctor.UserID, w.ID))
	assert.ErrorIs(t, f.svc.Doctors.DeleteAvailability(ctx, doctor.UserID, w.ID), ErrNotFound)
}

func TestDoctorReviews(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	doctor := testutil.CreateDoctor(t, f.db, "dave", "LIC-1")
	client, appt := completedAppointment(t, f, doctor, 1)
	_, err := f.svc.Reviews.CreateReview(ctx, client.ID, appt.ID, 4, "kind")
	require.NoError(t, err)

	reviews, err := f.svc.Doctors.Reviews(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "kind", reviews[0].Comment)
	require.NotNil(t, reviews[0].Appointment)
	require.NotNil(t, reviews[0].Appointment.Client)
	assert.Equal(t, client.ID, reviews[0].Appointment.Client.ID)

	_, err = f.svc.Doctors.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
