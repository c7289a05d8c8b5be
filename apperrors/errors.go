package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind is the stable outcome class a caller can branch on.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindNotFound             Kind = "NOT_FOUND"
	KindConflict             Kind = "CONFLICT"
	KindInsufficientQuantity Kind = "INSUFFICIENT_QUANTITY"
	KindAlreadyReleased      Kind = "ALREADY_RELEASED"
	KindAlreadyReversed      Kind = "ALREADY_REVERSED"
	KindInternal             Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	// Details carries extra payload for the caller, e.g. the overage
	// figures on an over-consumption conflict.
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

// NotFound covers both true absence and cross-tenant access. The two are
// deliberately indistinguishable so existence never leaks across orgs.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func InsufficientQuantity(message string) *Error {
	return New(KindInsufficientQuantity, message)
}

func AlreadyReleased(message string) *Error {
	return New(KindAlreadyReleased, message)
}

func AlreadyReversed(message string) *Error {
	return New(KindAlreadyReversed, message)
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// KindOf extracts the Kind from any error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status the controllers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict, KindAlreadyReleased, KindAlreadyReversed:
		return fiber.StatusConflict
	case KindInsufficientQuantity:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
