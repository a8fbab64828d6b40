package errors

import (
	"fmt"
	"testing"
)

func TestExtractionIncompleteError(t *testing.T) {
	err := NewExtractionIncompleteError([]string{"phone_num", "so_no"})
	expected := "extraction incomplete: missing phone_num, so_no"

	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
	if !IsExtractionIncomplete(fmt.Errorf("wrapped: %w", err)) {
		t.Error("expected IsExtractionIncomplete to see through wrapping")
	}
}

func TestMissingQuotedContextError(t *testing.T) {
	err := NewMissingQuotedContextError("reply to a message")
	if err.Message != "reply to a message" {
		t.Errorf("expected message 'reply to a message' but got %q", err.Message)
	}
	if !IsMissingQuotedContext(err) {
		t.Error("expected IsMissingQuotedContext to return true")
	}
	if IsDispatchFailure(err) {
		t.Error("expected IsDispatchFailure to return false for MissingQuotedContextError")
	}
}

func TestDispatchError(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := NewDispatchError("processor unreachable", "", base)

	if err.Unwrap() != base {
		t.Error("expected Unwrap to return the base error")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error string")
	}
	if !IsDispatchFailure(err) {
		t.Error("expected IsDispatchFailure to return true")
	}
}

func TestDetailOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"detail wins", NewDispatchError("bad status", "SO not found", nil), "SO not found"},
		{"no detail falls back", NewDispatchError("timeout", "", nil), "dispatch failed: timeout"},
		{"plain error", fmt.Errorf("boom"), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetailOf(tt.err); got != tt.expected {
				t.Errorf("expected %q but got %q", tt.expected, got)
			}
		})
	}
}

func TestNotificationError(t *testing.T) {
	base := fmt.Errorf("socket closed")
	err := NewNotificationError("-100123", base)
	if err.Unwrap() != base {
		t.Error("expected Unwrap to return the base error")
	}
	expected := "notification to -100123 failed: socket closed"
	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}
}
