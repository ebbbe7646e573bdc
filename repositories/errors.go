package repositories

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"warbler/models"
)

// Common errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidInput  = errors.New("invalid input parameters")
	ErrDatabase      = errors.New("database error")

	// ErrSelfAction is returned when a user tries to follow themselves or
	// like their own message
	ErrSelfAction = fmt.Errorf("%w: action on own account", ErrInvalidInput)
)

// translateError maps gorm and driver errors onto the repository errors.
// Model validation errors pass through untouched.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, models.ErrMissingField), errors.Is(err, models.ErrTextTooLong),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput), errors.Is(err, ErrAlreadyExists):
		return err
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrAlreadyExists, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
}

// isUniqueViolation also inspects the message so drivers without an
// error translator are covered.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}
