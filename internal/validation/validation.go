// Package validation holds the field-level input checks shared by the record
// model and the input layers. Every check is pure and reports failure as an
// error value.
package validation

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Error is a single rejected input.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Errors is every message collected for one record.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}

// Bound returns a pointer to v, for the optional min/max arguments.
func Bound[T int | float64](v T) *T {
	return &v
}

func fail(label, format string, args ...any) *Error {
	return &Error{Field: label, Message: label + " " + fmt.Sprintf(format, args...)}
}

// RequireNonEmpty rejects an empty or whitespace-only value.
func RequireNonEmpty(value, label string) error {
	if strings.TrimSpace(value) == "" {
		return fail(label, "is required")
	}
	return nil
}

// RequireIntegerInRange parses value as a base-10 integer and applies the optional bounds.
func RequireIntegerInRange(value, label string, min, max *int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fail(label, "must be an integer")
	}
	if min != nil && n < *min {
		return n, fail(label, "must be at least %d", *min)
	}
	if max != nil && n > *max {
		return n, fail(label, "must be at most %d", *max)
	}
	return n, nil
}

// RequireNumberInRange parses value as a finite decimal number and applies the optional bounds.
func RequireNumberInRange(value, label string, min, max *float64) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fail(label, "must be a number")
	}
	if min != nil && f < *min {
		return f, fail(label, "must be at least %s", formatNumber(*min))
	}
	if max != nil && f > *max {
		return f, fail(label, "must be at most %s", formatNumber(*max))
	}
	return f, nil
}

// RequireMember rejects a value outside allowed. The comparison is exact.
func RequireMember(value, label string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fail(label, "must be one of: %s", strings.Join(allowed, ", "))
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
