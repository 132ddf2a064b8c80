package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Typed errors unwrap to one of these, so callers classify with errors.Is.
var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrValueIsOutOfRange   = errors.New("value is out of range")
	ErrValueIsRequired     = errors.New("value is required")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrTransitionIsInvalid = errors.New("transition is invalid")
	ErrAlreadyAssigned     = errors.New("order is already assigned")
)

// ObjectNotFoundError is returned when an aggregate cannot be loaded by its identifier.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when an input is present but malformed.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a value falls outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, min, max any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: min, Max: max}
}

func NewValueIsOutOfRangeErrorWithCause(paramName string, value, min, max any, cause error) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: min, Max: max, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitizeValue(e.Value), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a mandatory input is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// NotAuthorizedError is returned when the caller's role or identity does not own the operation.
type NotAuthorizedError struct {
	ActorID string
	Reason  string
}

func NewNotAuthorizedError(actorID string, reason string) *NotAuthorizedError {
	return &NotAuthorizedError{ActorID: actorID, Reason: reason}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: actor %s %s", ErrNotAuthorized, e.ActorID, e.Reason)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// TransitionIsInvalidError is returned when the current state is not an allowed predecessor
// for the requested operation.
type TransitionIsInvalidError struct {
	Subject   string
	From      string
	Operation string
}

func NewTransitionIsInvalidError(subject, from, operation string) *TransitionIsInvalidError {
	return &TransitionIsInvalidError{Subject: subject, From: from, Operation: operation}
}

func (e *TransitionIsInvalidError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s in status %s", ErrTransitionIsInvalid, e.Operation, e.Subject, e.From)
}

func (e *TransitionIsInvalidError) Unwrap() error {
	return ErrTransitionIsInvalid
}

// AlreadyAssignedError is returned to every accept caller except the single winner.
type AlreadyAssignedError struct {
	OrderID string
}

func NewAlreadyAssignedError(orderID string) *AlreadyAssignedError {
	return &AlreadyAssignedError{OrderID: orderID}
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAlreadyAssigned, e.OrderID)
}

func (e *AlreadyAssignedError) Unwrap() error {
	return ErrAlreadyAssigned
}

// IsValidation reports whether err belongs to the caller-fixable validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// Client-facing error codes returned by Code.
const (
	CodeAlreadyAssigned   = "already_assigned"
	CodeValidation        = "validation"
	CodeNotAuthorized     = "not_authorized"
	CodeNotFound          = "not_found"
	CodeInvalidTransition = "invalid_transition"
	CodeInternal          = "internal"
)

// Code classifies err for clients. Errors outside the taxonomy are CodeInternal.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyAssigned):
		return CodeAlreadyAssigned
	case IsValidation(err):
		return CodeValidation
	case errors.Is(err, ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, ErrObjectNotFound):
		return CodeNotFound
	case errors.Is(err, ErrTransitionIsInvalid):
		return CodeInvalidTransition
	default:
		return CodeInternal
	}
}

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%s", v), "\n", " ")
}

func sanitizeValue(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}
