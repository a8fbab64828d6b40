// Package errors provides custom error types for the loading bot.
//
// Each type maps to one user-visible failure class of the command pipeline
// and carries enough context to compose the reply that goes back to the chat.
// None of them is fatal: callers report and move on.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ExtractionIncompleteError indicates that required fields were not found.
//
// This error is returned when:
//   - The quoted message and the command together lack a required field
//   - The driver line is missing or has no 4-digit license
//
// Recovery strategy: Reply with the missing field names, do not enqueue
type ExtractionIncompleteError struct {
	Missing []string // wire names, e.g. "phone_num"
}

func (e *ExtractionIncompleteError) Error() string {
	return fmt.Sprintf("extraction incomplete: missing %s", strings.Join(e.Missing, ", "))
}

// NewExtractionIncompleteError creates a new extraction error for the given fields
func NewExtractionIncompleteError(missing []string) *ExtractionIncompleteError {
	return &ExtractionIncompleteError{Missing: missing}
}

// MissingQuotedContextError indicates that a command arrived without the
// original message it should be replying to (or that message had no text).
//
// Recovery strategy: Reply immediately with Message, do not enqueue
type MissingQuotedContextError struct {
	Message string
}

func (e *MissingQuotedContextError) Error() string {
	return fmt.Sprintf("missing quoted context: %s", e.Message)
}

// NewMissingQuotedContextError creates a new missing-context error with the user-facing text
func NewMissingQuotedContextError(msg string) *MissingQuotedContextError {
	return &MissingQuotedContextError{Message: msg}
}

// DispatchError wraps a failed call to the external processor.
//
// This error is returned when:
//   - The processor is unreachable or the call timed out
//   - The processor answered with a non-2xx status
//   - The processor answered with a status other than "success"
//
// Detail holds the best human-readable cause available (processor "message",
// then "error", then the transport error text).
//
// Recovery strategy: Report to the chat, drop the item, continue the queue
type DispatchError struct {
	Message string
	Detail  string
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dispatch failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("dispatch failed: %s", e.Message)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *DispatchError) Unwrap() error {
	return e.Err
}

// NewDispatchError creates a new dispatch error with context
func NewDispatchError(msg, detail string, err error) *DispatchError {
	return &DispatchError{Message: msg, Detail: detail, Err: err}
}

// NotificationError indicates that a best-effort reply could not be delivered.
//
// Recovery strategy: Log only; queue state and counters are unaffected
type NotificationError struct {
	ChatID string
	Err    error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification to %s failed: %v", e.ChatID, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// NewNotificationError creates a new notification error
func NewNotificationError(chatID string, err error) *NotificationError {
	return &NotificationError{ChatID: chatID, Err: err}
}

// IsExtractionIncomplete checks if the error chain contains an ExtractionIncompleteError
func IsExtractionIncomplete(err error) bool {
	var target *ExtractionIncompleteError
	return errors.As(err, &target)
}

// IsMissingQuotedContext checks if the error chain contains a MissingQuotedContextError
func IsMissingQuotedContext(err error) bool {
	var target *MissingQuotedContextError
	return errors.As(err, &target)
}

// IsDispatchFailure checks if the error chain contains a DispatchError
func IsDispatchFailure(err error) bool {
	var target *DispatchError
	return errors.As(err, &target)
}

// DetailOf returns the user-facing cause of a dispatch failure.
//
// Falls back to the error text when err is not a DispatchError or has no detail.
func DetailOf(err error) string {
	if err == nil {
		return ""
	}
	var de *DispatchError
	if errors.As(err, &de) && de.Detail != "" {
		return de.Detail
	}
	return err.Error()
}
