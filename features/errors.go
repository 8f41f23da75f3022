package features

import (
	"errors"
	"fmt"
)

// ErrValidation matches every error returned by Schema.Validate.
var ErrValidation = errors.New("feature validation failed")

type MissingFeatureError struct {
	Name string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("missing feature %q", e.Name)
}

func (e *MissingFeatureError) Is(target error) bool { return target == ErrValidation }

type UnknownFeatureError struct {
	Name string
}

func (e *UnknownFeatureError) Error() string {
	return fmt.Sprintf("unknown feature %q", e.Name)
}

func (e *UnknownFeatureError) Is(target error) bool { return target == ErrValidation }

// OutOfRangeError reports a value outside the inclusive [Min, Max] bounds.
type OutOfRangeError struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("feature %q: value %v outside [%v, %v]", e.Name, e.Value, e.Min, e.Max)
}

func (e *OutOfRangeError) Is(target error) bool { return target == ErrValidation }

// TypeMismatchError reports a value whose kind cannot serve the declared
// value type: non-numeric, non-finite, or fractional where an integer is
// required.
type TypeMismatchError struct {
	Name  string
	Value any
	Want  ValueType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("feature %q: %v (%T) is not a valid %s", e.Name, e.Value, e.Value, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrValidation }
