package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)

// Conflict kinds. Each wraps ErrConflict so callers can match either.
var (
	ErrSlotTaken        = fmt.Errorf("%w: this time slot is already booked", ErrConflict)
	ErrAlreadyReviewed  = fmt.Errorf("%w: this appointment has already been reviewed", ErrConflict)
	ErrDuplicateLicense = fmt.Errorf("%w: license number is already registered", ErrConflict)
	ErrDuplicateAccount = fmt.Errorf("%w: username or email is already in use", ErrConflict)
	ErrDuplicateWindow  = fmt.Errorf("%w: an availability window already starts at this time", ErrConflict)
)

// ValidationError reports user-correctable input problems.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func invalid(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// ErrInvalidTransition is returned when the transition policy rejects a status change.
var ErrInvalidTransition = &ValidationError{Fields: []string{"status: transition not allowed"}}

// IsDuplicateKey reports whether err is a unique-constraint violation from any
// supported engine.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

// translateDBError maps storage errors onto the service error kinds.
// conflict is returned for unique violations; nil keeps the generic ErrConflict.
func translateDBError(err error, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case IsDuplicateKey(err):
		if conflict == nil {
			return ErrConflict
		}
		return conflict
	}
	return err
}

// IsConflict reports whether err is any conflict kind.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
