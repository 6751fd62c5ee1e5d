package service

import (
	"errors"
	"fmt"
)

// ErrTryAgain is what callers see when an unexpected storage failure rolled
// an operation back. The underlying error is logged, never exposed.
var ErrTryAgain = errors.New("could not process the operation, please try again")

// BusinessRuleError is a user-facing rejection with the specific reason.
// It is detected before any mutation; no retry is implied.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string {
	return e.Reason
}

func businessRule(format string, args ...any) error {
	return &BusinessRuleError{Reason: fmt.Sprintf(format, args...)}
}

// IsBusinessRule reports whether err is a business-rule rejection.
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// NotFoundError names the missing entity so the adapter can report it.
type NotFoundError struct {
	Entity string
	ID     int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func notFound(entity string, id int32) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}
