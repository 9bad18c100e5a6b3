package typesystem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/gneedle/internal/config"
)

// ErrInvalidTypeName is returned when a type name rendering cannot be parsed.
var ErrInvalidTypeName = errors.New(config.InvalidTypeName)

// InvalidShapeError indicates a type expression constructor received a
// handle whose generic shape contradicts the requested variant.
type InvalidShapeError struct {
	TypeName string
	Message  string
}

func (e *InvalidShapeError) Error() string {
	return e.Message
}

// NewNongenericShapeError reports a generic handle given to NewNongenericType.
func NewNongenericShapeError(typeName string) *InvalidShapeError {
	return &InvalidShapeError{TypeName: typeName, Message: fmt.Sprintf(config.IsNotNongenericType, typeName)}
}

// NewGenericShapeError reports a non-generic handle given to NewGenericType.
func NewGenericShapeError(typeName string) *InvalidShapeError {
	return &InvalidShapeError{TypeName: typeName, Message: fmt.Sprintf(config.IsNotParameterizedGeneric, typeName)}
}

// NewArityError reports an argument list that does not match the definition.
func NewArityError(typeName string, want, got int) *InvalidShapeError {
	return &InvalidShapeError{TypeName: typeName, Message: fmt.Sprintf(config.ArityMismatch, typeName, want, got)}
}

// UnrecognizedTypeShapeError is returned by the resolver for a value outside
// the three type expression variants. It signals a programming defect.
type UnrecognizedTypeShapeError struct {
	Value interface{}
}

func (e *UnrecognizedTypeShapeError) Error() string {
	return fmt.Sprintf(config.UnrecognizedTypeShape, e.Value)
}

func NewUnrecognizedTypeShapeError(value interface{}) *UnrecognizedTypeShapeError {
	return &UnrecognizedTypeShapeError{Value: value}
}

// InvalidConstraintError reports constraints that cannot appear together on
// one generic parameter.
type InvalidConstraintError struct {
	Constraints []string
}

func (e *InvalidConstraintError) Error() string {
	return fmt.Sprintf(config.InvalidConstraint, strings.Join(e.Constraints, ", "))
}

func NewInvalidConstraintError(names ...string) *InvalidConstraintError {
	return &InvalidConstraintError{Constraints: names}
}
