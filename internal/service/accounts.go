package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medica-server/internal/metrics"
	"medica-server/internal/models"
)

// AccountService owns signup, login, profile edits, refresh tokens and the
// client-to-doctor upgrade.
type AccountService struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.Collector
}

func NewAccountService(db *gorm.DB, log *zap.Logger, m *metrics.Collector) *AccountService {
	return &AccountService{db: db, log: log, metrics: m}
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      models.Role
}

// Register creates a client or doctor account. Doctor accounts get a
// placeholder profile in the same transaction.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var fields []string
	if strings.TrimSpace(in.Username) == "" {
		fields = append(fields, "username: required")
	}
	if !strings.Contains(in.Email, "@") {
		fields = append(fields, "email: must be a valid address")
	}
	if len(in.Password) < 8 {
		fields = append(fields, "password: at least 8 characters")
	}
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	if in.Role != models.RoleClient && in.Role != models.RoleDoctor {
		fields = append(fields, "role: must be client or doctor")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	user := models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      in.Role,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return translateDBError(err, ErrDuplicateAccount)
		}
		if user.Role != models.RoleDoctor {
			return nil
		}
		if _, _, err := ensureDoctorProfile(tx, user.ID); err != nil {
			return err
		}
		return notify(tx, user.ID, models.NotificationSystem, "Complete your medical profile",
			"Your doctor account was created. Add your license number and speciality so clients can find you.")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("account registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return &user, nil
}

// Authenticate resolves login (username or email) and checks the password.
func (s *AccountService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.CheckPassword(password) {
		return nil, ErrNotAuthenticated
	}
	return &user, nil
}

// GetUser loads a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateDBError(err, nil)
	}
	return &user, nil
}

// ProfileInput carries the editable user fields; nil means unchanged.
type ProfileInput struct {
	FirstName      *string
	LastName       *string
	Email          *string
	Phone          *string
	Address        *string
	City           *string
	ProfilePicture *string
	DateOfBirth    *string
}

// UpdateProfile edits the caller's own user record.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	updates := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	setString("first_name", in.FirstName)
	setString("last_name", in.LastName)
	setString("phone", in.Phone)
	setString("address", in.Address)
	setString("city", in.City)
	setString("profile_picture", in.ProfilePicture)

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if !strings.Contains(email, "@") {
			return nil, invalid("email: must be a valid address")
		}
		updates["email"] = email
	}
	if in.DateOfBirth != nil {
		if *in.DateOfBirth == "" {
			updates["date_of_birth"] = nil
		} else {
			dob, err := time.Parse(models.DateLayout, *in.DateOfBirth)
			if err != nil {
				return nil, invalid("dateOfBirth: expected YYYY-MM-DD")
			}
			updates["date_of_birth"] = dob
		}
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, translateDBError(err, ErrDuplicateAccount)
	}
	return s.GetUser(ctx, userID)
}

// StoreRefreshToken persists an issued refresh token.
func (s *AccountService) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	rt := models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	if err := s.db.WithContext(ctx).Create(&rt).Error; err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken revokes a live refresh token and returns its owner.
// Unknown, expired or revoked tokens yield ErrNotAuthenticated.
func (s *AccountService) ConsumeRefreshToken(ctx context.Context, userID, token string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?", token, userID, false, time.Now()).
			Update("is_revoked", true)
		if res.Error != nil {
			return fmt.Errorf("revoking refresh token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotAuthenticated
		}
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAuthenticated
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RevokeRefreshToken invalidates token. Unknown tokens are not an error.
func (s *AccountService) RevokeRefreshToken(ctx context.Context, token string) error {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", token, false).
		Updates(map[string]any{"is_revoked": true, "expires_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	return nil
}

// UpgradeToDoctor moves a client to the doctor role and creates a doctor
// profile with a placeholder license when none exists. Calling it again is a
// no-op; created reports whether a profile was made.
func (s *AccountService) UpgradeToDoctor(ctx context.Context, userID string) (doctor *models.Doctor, created bool, err error) {
	ctx, span := tracer.Start(ctx, "AccountService.UpgradeToDoctor")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).First(&user, "id = ?", userID).Error; err != nil {
			return translateDBError(err, nil)
		}
		doctor, created, err = upgradeTx(tx, &user)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.metrics.DoctorUpgrades.Inc()
		s.log.Info("doctor profile created by upgrade", zap.String("user_id", userID), zap.String("doctor_id", doctor.ID))
	}
	return doctor, created, nil
}

// upgradeTx applies the role change for a locked user row.
func upgradeTx(tx *gorm.DB, user *models.User) (*models.Doctor, bool, error) {
	switch user.Role {
	case models.RoleAdmin:
		return nil, false, invalid("role: administrators cannot be upgraded to doctor")
	case models.RoleClient:
		if err := tx.Model(user).Update("role", models.RoleDoctor).Error; err != nil {
			return nil, false, fmt.Errorf("updating role: %w", err)
		}
		user.Role = models.RoleDoctor
	case models.RoleDoctor:
	default:
		return nil, false, fmt.Errorf("user %s has unknown role %q", user.ID, user.Role)
	}

	doctor, created, err := ensureDoctorProfile(tx, user.ID)
	if err != nil {
		return nil, false, err
	}
	if created {
		if err := notify(tx, user.ID, models.NotificationSystem, "Doctor profile created",
			"Your account now has a doctor profile. Complete it with your real license number."); err != nil {
			return nil, false, err
		}
	}
	return doctor, created, nil
}

// ensureDoctorProfile returns the user's doctor profile, creating a placeholder one if missing.
func ensureDoctorProfile(tx *gorm.DB, userID string) (*models.Doctor, bool, error) {
	var d models.Doctor
	err := tx.Where("user_id = ?", userID).First(&d).Error
	if err == nil {
		return &d, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("loading doctor profile: %w", err)
	}

	d = models.Doctor{
		UserID:        userID,
		LicenseNumber: models.PlaceholderLicense(userID),
		IsAvailable:   true,
	}
	if err := tx.Create(&d).Error; err != nil {
		if !IsDuplicateKey(err) {
			return nil, false, fmt.Errorf("creating doctor profile: %w", err)
		}
		// Another transaction created it first.
		if err := forUpdate(tx).Where("user_id = ?", userID).First(&d).Error; err != nil {
			return nil, false, fmt.Errorf("reloading doctor profile: %w", err)
		}
		return &d, false, nil
	}
	return &d, true, nil
}

// SocialIdentity is what the external identity provider vouches for.
type SocialIdentity struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// LinkSocialAccount finalises an external login. requestedRole is the role the
// user picked before leaving for the provider; empty means client.
//
//   - a user already linked to the subject is returned unchanged
//   - a user with the same email is linked, and upgraded when a client asked for doctor
//   - otherwise a new account is created with the requested role
//
// ident must already be verified; the HTTP layer only passes identities from a
// signed assertion.
func (s *AccountService) LinkSocialAccount(ctx context.Context, ident SocialIdentity, requestedRole models.Role) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "AccountService.LinkSocialAccount")
	defer span.End()

	if requestedRole == "" {
		requestedRole = models.RoleClient
	}
	var fields []string
	if requestedRole != models.RoleClient && requestedRole != models.RoleDoctor {
		fields = append(fields, "role: must be client or doctor")
	}
	if strings.TrimSpace(ident.Subject) == "" {
		fields = append(fields, "subject: required")
	}
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if !strings.Contains(email, "@") {
		fields = append(fields, "email: must be a valid address")
	}
	if len(fields) > 0 {
		return nil, invalid(fields...)
	}

	var (
		user     models.User
		upgraded bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("social_uid = ?", ident.Subject).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("loading linked account: %w", err)
		}

		err = forUpdate(tx).Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			subject := ident.Subject
			if err := tx.Model(&user).Update("social_uid", subject).Error; err != nil {
				return translateDBError(err, ErrDuplicateAccount)
			}
			user.SocialUID = &subject
			if requestedRole == models.RoleDoctor && user.Role == models.RoleClient {
				_, created, err := upgradeTx(tx, &user)
				upgraded = created
				return err
			}
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("loading account by email: %w", err)
		}

		subject := ident.Subject
		user = models.User{
			Username:  email,
			Email:     email,
			FirstName: ident.FirstName,
			LastName:  ident.LastName,
			Role:      requestedRole,
			SocialUID: &subject,
		}
		// External accounts never log in with a password.
		if err := user.SetPassword(uuid.NewString()); err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}
		if err := tx.Create(&user).Error; err != nil {
			return translateDBError(err, ErrDuplicateAccount)
		}
		if user.Role == models.RoleDoctor {
			_, created, err := ensureDoctorProfile(tx, user.ID)
			upgraded = created
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if upgraded {
		s.metrics.DoctorUpgrades.Inc()
	}
	span.SetAttributes(attribute.String("user.id", user.ID), attribute.String("user.role", string(user.Role)))
	return &user, nil
}
