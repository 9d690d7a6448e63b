package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxFieldLength bounds free-text form fields (level, focus, section names).
const maxFieldLength = 64

// ValidateField checks a free-text form value before it is matched against
// a catalog. It rejects empty values, over-long values and control
// characters so they never reach logs or templates.
func ValidateField(code Code, field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return New(code, "%s cannot be empty", field)
	}
	if len(value) > maxFieldLength {
		return New(code, "%s too long (max %d characters)", field, maxFieldLength)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(code, "%s contains invalid control characters", field)
		}
	}
	return nil
}

// ValidateRange checks that n lies within [lo, hi].
func ValidateRange(code Code, field string, n, lo, hi int) error {
	if n < lo || n > hi {
		return New(code, "%s must be between %d and %d, got %d", field, lo, hi, n)
	}
	return nil
}

// ValidateRoutineID checks that id is a canonical UUID string.
func ValidateRoutineID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "routine id cannot be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Wrap(ErrCodeInvalidID, err, "invalid routine id: %q", id)
	}
	if parsed.String() != strings.ToLower(id) {
		return New(ErrCodeInvalidID, "routine id must be in canonical form: %q", id)
	}
	return nil
}
