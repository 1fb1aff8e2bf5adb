package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks network/timeout style provider failures that are retried with backoff.
	ErrTransient = errors.New("transient provider error")
	// ErrPermanent marks auth/quota/invalid-input provider failures that are never retried.
	ErrPermanent = errors.New("permanent provider error")
	// ErrDataAlignment marks a paragraph that could not be mapped back onto its segments.
	ErrDataAlignment = errors.New("data alignment error")
	// ErrValidation marks a violated stage precondition (for example no input segments).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable configuration (for example no voices for the provider).
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether a provider error is worth another attempt.
// Permanent errors and cancellation are never retried. A per-call deadline is
// transient; callers check their own context before retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrPermanent) {
		return false
	}
	return true
}

// IsJobFatal reports whether err violates a precondition that aborts the whole job.
func IsJobFatal(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
