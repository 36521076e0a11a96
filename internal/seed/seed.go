// Package seed loads the reference specialities and the initial administrator.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/config"
	"medica-server/internal/models"
)

// Specialities is the catalogue loaded by Run.
var Specialities = []models.Speciality{
	{Name: "Cardiology", Icon: "fa-heart-pulse"},
	{Name: "Dermatology", Icon: "fa-allergies"},
	{Name: "Neurology", Icon: "fa-brain"},
	{Name: "Pediatrics", Icon: "fa-baby"},
	{Name: "Psychiatry", Icon: "fa-user-nurse"},
	{Name: "Orthopedics", Icon: "fa-bone"},
	{Name: "Ophthalmology", Icon: "fa-eye"},
	{Name: "Dentistry", Icon: "fa-tooth"},
}

// Result counts what Run created.
type Result struct {
	Specialities int
	AdminCreated bool
}

// Run creates missing specialities and the admin superuser. Existing rows are left alone,
// so running it twice is harmless.
func Run(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) (Result, error) {
	var res Result
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, def := range Specialities {
			var existing models.Speciality
			err := tx.Where("name = ?", def.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("loading speciality %s: %w", def.Name, err)
			}
			s := models.Speciality{Name: def.Name, Icon: def.Icon}
			if err := tx.Create(&s).Error; err != nil {
				return fmt.Errorf("seeding speciality %s: %w", def.Name, err)
			}
			res.Specialities++
			log.Info("created speciality", zap.String("name", s.Name))
		}

		var admin models.User
		err := tx.Where("username = ?", cfg.AdminUsername).First(&admin).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("loading admin: %w", err)
		}

		admin = models.User{
			Username:    cfg.AdminUsername,
			Email:       cfg.AdminEmail,
			FirstName:   "Medica",
			LastName:    "Admin",
			Role:        models.RoleAdmin,
			IsSuperuser: true,
		}
		if err := admin.SetPassword(cfg.AdminPassword); err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		res.AdminCreated = true
		log.Info("created superuser", zap.String("username", admin.Username))
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
