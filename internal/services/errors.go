package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound signals that the target row does not exist. The operation is
// a no-op in that case.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed or out-of-range input. The message is
// user-visible.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a uniqueness or referential-integrity violation.
// The message names the specific cause and is user-visible.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// IsDuplicate reports whether err is a uniqueness violation. GORM's
// translated error covers postgres; the string checks cover drivers that
// do not translate (sqlite in tests).
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "UNIQUE constraint failed")
}
