package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Doctor ")
	require.NoError(t, err)
	assert.Equal(t, RoleDoctor, r)

	_, err = ParseRole("patient")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestStrictTransitions(t *testing.T) {
	p := StrictTransitions{}

	allowed := [][2]AppointmentStatus{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusNoShow},
		{StatusCompleted, StatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, p.Allows(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]AppointmentStatus{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusNoShow},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusNoShow, StatusCompleted},
		{StatusPending, AppointmentStatus("rescheduled")},
	}
	for _, tr := range denied {
		assert.False(t, p.Allows(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestPermissiveTransitions(t *testing.T) {
	p := PermissiveTransitions{}
	assert.True(t, p.Allows(StatusCompleted, StatusPending))
	assert.True(t, p.Allows(StatusPending, StatusCompleted))
	assert.False(t, p.Allows(StatusPending, AppointmentStatus("")))
}

func TestNormalizeDateAndClock(t *testing.T) {
	d, err := NormalizeDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", d)

	_, err = NormalizeDate("10/01/2024")
	assert.Error(t, err)
	_, err = NormalizeDate("2024-02-30")
	assert.Error(t, err)

	c, err := NormalizeClock("14:00:00")
	require.NoError(t, err)
	assert.Equal(t, "14:00", c)

	c, err = NormalizeClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", c)

	_, err = NormalizeClock("25:00")
	assert.Error(t, err)
	_, err = NormalizeClock("14:00:45")
	assert.ErrorContains(t, err, "seconds")
}

func TestSlotGrid(t *testing.T) {
	g := DefaultSlotGrid
	for _, clock := range []string{"08:00", "08:30", "12:00", "17:30"} {
		assert.True(t, g.Contains(clock), clock)
	}
	for _, clock := range []string{"07:30", "18:00", "03:17", "09:15", "nine"} {
		assert.False(t, g.Contains(clock), clock)
	}

	custom, err := NewSlotGrid("09:00", "12:00", 20)
	require.NoError(t, err)
	assert.True(t, custom.Contains("11:40"))
	assert.False(t, custom.Contains("11:30"))
	assert.Equal(t, "every 20 minutes from 09:00 to 12:00", custom.String())

	defaults, err := NewSlotGrid("", "", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSlotGrid, defaults)

	_, err = NewSlotGrid("12:00", "09:00", 30)
	assert.Error(t, err)
	_, err = NewSlotGrid("09:00", "12:10", 30)
	assert.Error(t, err)
	_, err = NewSlotGrid("9am", "", 30)
	assert.Error(t, err)
	_, err = NewSlotGrid("", "", -5)
	assert.Error(t, err)
}

func TestAppointmentIsUpcoming(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	a := Appointment{AppointmentDate: "2024-01-10", AppointmentTime: "14:00"}
	assert.True(t, a.IsUpcoming(now))

	a.AppointmentTime = "11:59"
	assert.False(t, a.IsUpcoming(now))
}

func TestPlaceholderLicense(t *testing.T) {
	l := PlaceholderLicense("abc")
	assert.Equal(t, "PENDING-abc", l)
	assert.True(t, IsPlaceholderLicense(l))
	assert.True(t, IsPlaceholderLicense("pending-123"))
	assert.False(t, IsPlaceholderLicense("MD-12345"))
}

func TestWeekdayIndex(t *testing.T) {
	assert.Equal(t, Monday, WeekdayIndex(time.Monday))
	assert.Equal(t, Sunday, WeekdayIndex(time.Sunday))
	assert.Equal(t, "Wednesday", DayName(Wednesday))
	assert.Equal(t, "", DayName(7))
}

func TestUserPassword(t *testing.T) {
	u := User{}
	require.NoError(t, u.SetPassword("s3cret-pass"))
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.Equal(t, "", u.Sanitize().Email)
}
