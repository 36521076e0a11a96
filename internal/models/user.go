package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleClient Role = "client"
)

// Roles lists every role a user can hold.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleClient}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleClient:
		return true
	}
	return false
}

// ParseRole normalises s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User represents a user in the system
type User struct {
	BaseModel
	Username       string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email          string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName      string     `gorm:"size:100" json:"firstName"`
	LastName       string     `gorm:"size:100" json:"lastName"`
	Role           Role       `gorm:"size:10;not null;default:'client';index" json:"role"`
	IsSuperuser    bool       `gorm:"default:false" json:"isSuperuser"`
	Phone          string     `gorm:"size:20" json:"phone,omitempty"`
	Address        string     `gorm:"type:text" json:"address,omitempty"`
	City           string     `gorm:"size:100;index" json:"city,omitempty"`
	ProfilePicture string     `gorm:"size:500" json:"profilePicture,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	SocialUID      *string    `gorm:"uniqueIndex;size:255" json:"-"`

	// Relations (not always preloaded)
	RefreshTokens      []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ClientAppointments []Appointment  `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	Notifications      []Notification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Role           Role       `json:"role"`
	Phone          string     `json:"phone,omitempty"`
	Address        string     `json:"address,omitempty"`
	City           string     `json:"city,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		Phone:          u.Phone,
		Address:        u.Address,
		City:           u.City,
		ProfilePicture: u.ProfilePicture,
		DateOfBirth:    u.DateOfBirth,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
