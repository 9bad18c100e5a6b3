// Package needle exposes the type-identity engine to code outside this
// module: building type expressions over runtime handles and computing
// their canonical names.
package needle

import (
	"github.com/funvibe/gneedle/internal/catalog"
	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// Type expression aliases
type Type = typesystem.Type
type GenericParameterType = typesystem.GenericParameterType
type NongenericType = typesystem.NongenericType
type GenericType = typesystem.GenericType
type Handle = typesystem.Handle
type Reference = typesystem.Reference
type Name = typesystem.Name
type Constraint = typesystem.Constraint
type Attributes = typesystem.Attributes

// Runtime model aliases
type RuntimeType = clr.Type
type Catalog = catalog.Catalog

// Predefined constraints
var (
	ConstraintNew       = typesystem.ConstraintNew
	ConstraintStruct    = typesystem.ConstraintStruct
	ConstraintClass     = typesystem.ConstraintClass
	ConstraintUnmanaged = typesystem.ConstraintUnmanaged
	ConstraintNotNull   = typesystem.ConstraintNotNull
	ConstraintIn        = typesystem.ConstraintIn
	ConstraintOut       = typesystem.ConstraintOut
)

func NewGenericParameterType(name string, constraints ...Constraint) (GenericParameterType, error) {
	return typesystem.NewGenericParameterType(name, constraints...)
}

func NewNongenericType(h Handle) (NongenericType, error) {
	return typesystem.NewNongenericType(h)
}

func NewGenericType(def Handle, args ...Type) (GenericType, error) {
	return typesystem.NewGenericType(def, args...)
}

func NewGenericTypeFromNames(def Handle, names ...string) (GenericType, error) {
	return typesystem.NewGenericTypeFromNames(def, names...)
}

func NewGenericTypeFromHandles(def Handle, handles ...Handle) (GenericType, error) {
	return typesystem.NewGenericTypeFromHandles(def, handles...)
}

func NewConstraint(bound Type, extra Attributes) (Constraint, error) {
	return typesystem.NewConstraint(bound, extra)
}

// Combine merges the attributes of constraints.
func Combine(constraints ...Constraint) Attributes {
	return typesystem.Combine(constraints...)
}

// NameOf returns the canonical name of a type expression.
func NameOf(t Type) (Name, error) {
	return typesystem.NameOf(t)
}

// NameOfHandle returns the canonical name of a runtime type.
func NameOfHandle(h Handle) (Name, error) {
	return typesystem.NameOfHandle(h)
}

// NameOfReference returns the canonical name of an IL type reference.
func NameOfReference(r Reference) (Name, error) {
	return typesystem.NameOfReference(r)
}

// ParseName normalizes any runtime or IL rendering of a type name.
func ParseName(s string) (Name, error) {
	return typesystem.ParseName(s)
}

// DefaultCatalog holds the core library types.
func DefaultCatalog() *Catalog {
	return catalog.Default()
}

// LoadCatalog reads a gneedle.yaml catalog.
func LoadCatalog(path string) (*Catalog, error) {
	return catalog.Load(path)
}

// Parse parses a C#-like type expression against the core library.
func Parse(src string) (Type, error) {
	return catalog.Default().ParseExpr(src)
}
