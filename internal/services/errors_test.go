package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"dubline/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "translate", "paragraph", "provider failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"translate", "paragraph", "provider failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", services.Wrap(services.ErrTransient, "synth", "call", "timeout", nil), true},
		{"permanent", services.Wrap(services.ErrPermanent, "synth", "call", "unauthorized", nil), false},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"unclassified", errors.New("weird"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsJobFatal(t *testing.T) {
	if !services.IsJobFatal(services.Wrap(services.ErrValidation, "pipeline", "validate", "no segments", nil)) {
		t.Fatal("expected validation error to be job fatal")
	}
	if !services.IsJobFatal(services.Wrap(services.ErrConfiguration, "voice", "assign", "no voices", nil)) {
		t.Fatal("expected configuration error to be job fatal")
	}
	if services.IsJobFatal(services.Wrap(services.ErrDataAlignment, "timing", "restore", "no match", nil)) {
		t.Fatal("alignment errors degrade, they are not job fatal")
	}
}
