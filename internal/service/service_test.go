package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/config"
	"medica-server/internal/metrics"
	"medica-server/internal/models"
	"medica-server/internal/testutil"
)

// fixedNow is a Monday morning shortly before the booked scenario dates.
var fixedNow = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.Local)

type fixture struct {
	db  *gorm.DB
	m   *metrics.Collector
	svc *Services
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	m := metrics.NewCollector("medica_test", prometheus.NewRegistry())
	svc, err := New(db, zap.NewNop(), m, config.BookingConfig{StrictStatusTransitions: strict})
	require.NoError(t, err)
	svc.Booking.SetClock(func() time.Time { return fixedNow })
	svc.Admin.now = func() time.Time { return fixedNow }
	return &fixture{db: db, m: m, svc: svc}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) notifications(t *testing.T, userID string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, f.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error)
	return out
}
