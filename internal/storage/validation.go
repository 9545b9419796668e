package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrZeroTime     = errors.New("time parameter cannot be zero")
	ErrNilParameter = errors.New("parameter cannot be nil")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDay ensures a date parameter is set.
func validateDay(t time.Time, paramName string) error {
	if t.IsZero() {
		return fmt.Errorf("%w: %s", ErrZeroTime, paramName)
	}
	return nil
}

// dayRange returns the half-open [start, end) window of one calendar day.
func dayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// dateKey is the canonical storage form of a claim or result date.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
