// Package testutil provides an in-memory database with the full schema for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"medica-server/internal/models"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with foreign keys enforced
// and the schema migrated. A single connection keeps every statement on the
// same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:medica_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbSeq.Add(1))
	db, err := models.Open(sqlite.Open(dsn))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role and a known password ("password123").
func CreateUser(t testing.TB, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		LastName:  "Tester",
		Role:      role,
	}
	if err := u.SetPassword("password123"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreateDoctor inserts a doctor-role user and its profile.
func CreateDoctor(t testing.TB, db *gorm.DB, username, license string) *models.Doctor {
	t.Helper()
	u := CreateUser(t, db, username, models.RoleDoctor)
	d := &models.Doctor{UserID: u.ID, LicenseNumber: license, IsAvailable: true}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create doctor %s: %v", username, err)
	}
	d.User = *u
	return d
}
