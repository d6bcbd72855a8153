package project

import (
	"errors"
	"fmt"

	"github.com/mwhitfield/gantry/internal/model"
)

// UnknownFieldError reports a field name absent from the event schema.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown event field %q", e.Field)
}

// IsUnknownFieldError reports whether err is an *UnknownFieldError.
func IsUnknownFieldError(err error) bool {
	var fe *UnknownFieldError
	return errors.As(err, &fe)
}

// FieldNotEditableError reports a write to a field the event's current
// scheduling mode does not accept (a derived field, or an
// authoritative field owned by the other mode).
type FieldNotEditableError struct {
	Event model.EventID
	Field string
}

func (e *FieldNotEditableError) Error() string {
	return fmt.Sprintf("field %q of event %q is not editable", e.Field, e.Event)
}

// IsFieldNotEditableError reports whether err is a
// *FieldNotEditableError.
func IsFieldNotEditableError(err error) bool {
	var fe *FieldNotEditableError
	return errors.As(err, &fe)
}

// FieldValueError reports a Set value whose type or format does not
// match the field.
type FieldValueError struct {
	Field string
	Value any
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("value %v (%T) is not valid for field %q", e.Value, e.Value, e.Field)
}

// IsFieldValueError reports whether err is a *FieldValueError.
func IsFieldValueError(err error) bool {
	var fe *FieldValueError
	return errors.As(err, &fe)
}

// UnknownResourceError reports a reference to an unregistered resource.
type UnknownResourceError struct {
	Resource model.ResourceID
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource %q", e.Resource)
}

// IsUnknownResourceError reports whether err is an
// *UnknownResourceError.
func IsUnknownResourceError(err error) bool {
	var re *UnknownResourceError
	return errors.As(err, &re)
}

// UnknownAssignmentError reports a reference to an unregistered
// assignment.
type UnknownAssignmentError struct {
	Assignment model.AssignmentID
}

func (e *UnknownAssignmentError) Error() string {
	return fmt.Sprintf("unknown assignment %q", e.Assignment)
}

// IsUnknownAssignmentError reports whether err is an
// *UnknownAssignmentError.
func IsUnknownAssignmentError(err error) bool {
	var ae *UnknownAssignmentError
	return errors.As(err, &ae)
}

// DuplicateResourceError reports a resource ID registered twice.
type DuplicateResourceError struct {
	Resource model.ResourceID
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("duplicate resource %q", e.Resource)
}

// IsDuplicateResourceError reports whether err is a
// *DuplicateResourceError.
func IsDuplicateResourceError(err error) bool {
	var de *DuplicateResourceError
	return errors.As(err, &de)
}
