// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Per-unit conditions. A single employee-day hitting one of these is
	// recorded or skipped; it never aborts a batch.
	ErrProfileNotFound   = errors.New("employee profile not found")
	ErrClaimNotFound     = errors.New("claim record not found")
	ErrNoEvents          = errors.New("no events for date")
	ErrInsufficientClaim = errors.New("claimed hours below comparison threshold")
	ErrMalformedEvent    = errors.New("malformed event")
	ErrPersistence       = errors.New("persistence failed")

	// Setup errors. Fatal: without the baseline store a batch cannot
	// produce Ground-Rules figures at all.
	ErrBaselineUnavailable = errors.New("team mobility baseline unavailable")
	ErrMissingConfig       = errors.New("missing configuration")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// IsSkippable reports whether an error marks a unit that should be counted
// as skipped rather than failed.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrNoEvents)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrPersistence) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
