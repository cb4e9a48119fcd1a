package common

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinels for the error kinds produced by the attribute store. Use errors.Is to match them.
var (
	ErrUnknownAttributeID   = errors.New("unknown attribute id")
	ErrUnknownAttributeName = errors.New("unknown attribute name")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrInvalidData          = errors.New("invalid data")
	ErrClassMismatch        = errors.New("class mismatch")
	ErrUnknownTag           = errors.New("unknown native param tag")
)

// UnknownAttributeIDError is returned when a wire attribute id is not part of the class schema
type UnknownAttributeIDError struct {
	Class string
	ID    uint16
}

func (e *UnknownAttributeIDError) Error() string {
	return fmt.Sprintf("%s: unknown attribute id %d", e.Class, e.ID)
}

func (e *UnknownAttributeIDError) Is(target error) bool { return target == ErrUnknownAttributeID }

// UnknownAttributeNameError is returned when an attribute is looked up by a name the class does not define
type UnknownAttributeNameError struct {
	Class string
	Name  string
}

func (e *UnknownAttributeNameError) Error() string {
	return fmt.Sprintf("%s: unknown attribute name %q", e.Class, e.Name)
}

func (e *UnknownAttributeNameError) Is(target error) bool { return target == ErrUnknownAttributeName }

// TypeMismatchError is returned when a value is not of the requested or declared type
type TypeMismatchError struct {
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// InvalidDataError is returned for malformed payloads. The stream it came from is not usable anymore.
type InvalidDataError struct {
	Reason string
}

func (e *InvalidDataError) Error() string {
	return "invalid data: " + e.Reason
}

func (e *InvalidDataError) Is(target error) bool { return target == ErrInvalidData }

// ClassMismatchError reports an operation between objects of different classes.
// This is a programming error, never a data error.
type ClassMismatchError struct {
	Left  string
	Right string
}

func (e *ClassMismatchError) Error() string {
	return fmt.Sprintf("class mismatch: %s vs %s", e.Left, e.Right)
}

func (e *ClassMismatchError) Is(target error) bool { return target == ErrClassMismatch }

// UnknownTagError is returned when a native param stream carries a tag outside the known range
type UnknownTagError struct {
	Tag byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown native param tag %d", e.Tag)
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// InvalidDataf builds an InvalidDataError with formatted reason
func InvalidDataf(format string, args ...interface{}) error {
	return &InvalidDataError{Reason: fmt.Sprintf(format, args...)}
}
