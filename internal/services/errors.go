package services

import (
	"errors"

	"github.com/chachabrian/carrental-backend/internal/models"
)

// Kind classifies failures for translation at the HTTP boundary.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_FAILED"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindAuthUnavailable Kind = "AUTH_UNAVAILABLE"
	KindInternal        Kind = "INTERNAL"
)

// Error is a business-rule failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
}

func (e *Error) Error() string { return e.Message }

func newErr(k Kind, msg string) error { return &Error{Kind: k, Message: msg} }

// KindOf extracts the kind of err. Validation errors from models are
// reported as KindValidation; anything unrecognised is KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return KindValidation
	}
	return KindInternal
}

func validationErr(err error) error {
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return &Error{Kind: KindValidation, Message: "Validation failed", Fields: verrs}
	}
	return err
}

var (
	errCarNotFound      = newErr(KindNotFound, "Car not found")
	errCarUnavailable   = newErr(KindConflict, "This car is no longer available")
	errCarAlreadyBooked = newErr(KindConflict, "This car is already booked")
	errOwnCar           = newErr(KindForbidden, "You cannot book your own car")
)
