package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation_error"
	KindNotFound          ErrorKind = "not_found"
	KindConflict          ErrorKind = "conflict"
	KindStorage           ErrorKind = "storage_error"
	KindInvalidTransition ErrorKind = "invalid_transition"
)

const (
	CodeMissingField          = "missing_field"
	CodeInvalidNumber         = "invalid_number"
	CodeInvalidEmail          = "invalid_email"
	CodeInvalidDate           = "invalid_date"
	CodeCheckinInPast         = "checkin_in_past"
	CodeCheckoutBeforeCheckin = "checkout_before_checkin"
	CodeInvalidStatus         = "invalid_status"
	CodePropertyUnavailable   = "property_unavailable"
	CodeBookingNotFound       = "booking_not_found"
	CodeDatesUnavailable      = "dates_unavailable"
	CodeStorageFailure        = "storage_failure"
	CodeInvalidTransition     = "invalid_transition"
)

// Error is the only error shape that leaves the booking services. Kind selects
// the transport status, Code is the stable tag callers switch on.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and code so sentinels work with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

var (
	ErrMissingField          = &Error{Kind: KindValidation, Code: CodeMissingField, Message: "All required fields must be provided"}
	ErrInvalidNumber         = &Error{Kind: KindValidation, Code: CodeInvalidNumber, Message: "Guests count and total amount must be valid numbers"}
	ErrInvalidEmail          = &Error{Kind: KindValidation, Code: CodeInvalidEmail, Message: "Please provide a valid email address"}
	ErrInvalidDate           = &Error{Kind: KindValidation, Code: CodeInvalidDate, Message: "Dates must be formatted as YYYY-MM-DD"}
	ErrCheckinInPast         = &Error{Kind: KindValidation, Code: CodeCheckinInPast, Message: "Check-in date cannot be in the past"}
	ErrCheckoutBeforeCheckin = &Error{Kind: KindValidation, Code: CodeCheckoutBeforeCheckin, Message: "Check-out date must be after check-in date"}
	ErrInvalidStatus         = &Error{Kind: KindValidation, Code: CodeInvalidStatus, Message: "Valid status is required (pending, confirmed, cancelled, completed)"}
	ErrPropertyUnavailable   = &Error{Kind: KindNotFound, Code: CodePropertyUnavailable, Message: "Property not found or not available"}
	ErrBookingNotFound       = &Error{Kind: KindNotFound, Code: CodeBookingNotFound, Message: "Booking not found"}
	ErrDatesUnavailable      = &Error{Kind: KindConflict, Code: CodeDatesUnavailable, Message: "Property is not available for the selected dates"}
	ErrStorage               = &Error{Kind: KindStorage, Code: CodeStorageFailure, Message: "Storage operation failed"}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition, Code: CodeInvalidTransition, Message: "Booking status transition is not allowed"}
)

func NewValidationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func NewInvalidTransitionError(from, to BookingStatus) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("Cannot change booking status from %s to %s", from, to),
	}
}

// NewStorageError wraps an infrastructure failure. Errors that already carry a
// kind are returned unchanged.
func NewStorageError(op string, err error) error {
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindStorage, Code: CodeStorageFailure, Message: "Failed to " + op, Err: err}
}

// KindOf reports the kind of err, treating unknown errors as storage failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}
