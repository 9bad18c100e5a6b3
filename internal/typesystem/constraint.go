package typesystem

import (
	"strings"
)

// Attributes are the constraints on a generic parameter, with the same bit
// values as GenericParameterAttributes in module metadata.
type Attributes uint16

const (
	Covariant                      Attributes = 0x0001
	Contravariant                  Attributes = 0x0002
	ReferenceTypeConstraint        Attributes = 0x0004
	NotNullableValueTypeConstraint Attributes = 0x0008
	DefaultConstructorConstraint   Attributes = 0x0010

	VarianceMask          = Covariant | Contravariant
	SpecialConstraintMask = ReferenceTypeConstraint | NotNullableValueTypeConstraint | DefaultConstructorConstraint
)

func (a Attributes) Has(flag Attributes) bool { return a&flag == flag }

func (a Attributes) String() string {
	if a == 0 {
		return "none"
	}
	var parts []string
	if a.Has(Covariant) {
		parts = append(parts, "out")
	}
	if a.Has(Contravariant) {
		parts = append(parts, "in")
	}
	if a.Has(ReferenceTypeConstraint) {
		parts = append(parts, "class")
	}
	if a.Has(NotNullableValueTypeConstraint) {
		parts = append(parts, "struct")
	}
	if a.Has(DefaultConstructorConstraint) {
		parts = append(parts, "new()")
	}
	return strings.Join(parts, "|")
}

type constraintKind int

const (
	customConstraint constraintKind = iota
	newConstraint
	structConstraint
	classConstraint
	unmanagedConstraint
	notNullConstraint
	inConstraint
	outConstraint
)

// Constraint is a restriction on the type arguments a generic parameter
// accepts. Without any constraints the argument could be any type.
type Constraint struct {
	name       string
	bound      Type
	attributes Attributes
	kind       constraintKind
}

// Predefined constraints. They carry no identity beyond their value.
var (
	// ConstraintNew requires a public parameterless constructor. It can't be
	// combined with struct or unmanaged.
	ConstraintNew = Constraint{name: "'new()'", attributes: DefaultConstructorConstraint, kind: newConstraint}

	// ConstraintStruct requires a non-nullable value type and implies new().
	ConstraintStruct = Constraint{
		name:       "'struct'",
		bound:      NongenericType{handle: valueTypeHandle},
		attributes: NotNullableValueTypeConstraint | DefaultConstructorConstraint,
		kind:       structConstraint,
	}

	// ConstraintClass requires a reference type.
	ConstraintClass = Constraint{name: "'class'", attributes: ReferenceTypeConstraint, kind: classConstraint}

	// ConstraintUnmanaged requires a non-nullable unmanaged type and implies struct.
	ConstraintUnmanaged = Constraint{
		name:       "'unmanaged'",
		attributes: NotNullableValueTypeConstraint | DefaultConstructorConstraint,
		kind:       unmanagedConstraint,
	}

	// ConstraintNotNull requires a non-nullable reference or value type.
	ConstraintNotNull = Constraint{name: "'notnull'", kind: notNullConstraint}

	// ConstraintIn marks the parameter contravariant.
	ConstraintIn = Constraint{name: "'in'", attributes: Contravariant, kind: inConstraint}

	// ConstraintOut marks the parameter covariant.
	ConstraintOut = Constraint{name: "'out'", attributes: Covariant, kind: outConstraint}
)

// NewConstraint creates a custom constraint bounded by a type. The bound
// contributes its own attributes: a generic parameter bound contributes the
// union of its declared constraints, a concrete bound the attributes its
// handle declares.
func NewConstraint(bound Type, extra Attributes) (Constraint, error) {
	name, err := NameOf(bound)
	if err != nil {
		return Constraint{}, err
	}
	attrs := extra
	switch b := bound.(type) {
	case GenericParameterType:
		attrs |= Combine(b.constraints...)
	case NongenericType:
		attrs |= b.handle.GenericParameterAttributes()
	case GenericType:
		attrs |= b.definition.GenericParameterAttributes()
	}
	return Constraint{name: name.String(), bound: bound, attributes: attrs}, nil
}

// ConstraintFromHandle creates a custom constraint bounded by a runtime type.
func ConstraintFromHandle(h Handle) (Constraint, error) {
	bound, err := FromHandle(h)
	if err != nil {
		return Constraint{}, err
	}
	return NewConstraint(bound, 0)
}

func (c Constraint) Name() string { return c.name }

// Bound is the type the argument must derive from, or nil.
func (c Constraint) Bound() Type { return c.bound }

func (c Constraint) Attributes() Attributes { return c.attributes }

func (c Constraint) String() string { return c.name }

// Equal compares constraints by value.
func (c Constraint) Equal(other Constraint) bool {
	if c.name != other.name || c.attributes != other.attributes || c.kind != other.kind {
		return false
	}
	if c.bound == nil || other.bound == nil {
		return c.bound == nil && other.bound == nil
	}
	return Equal(c.bound, other.bound)
}

// Combine merges the attribute sets of constraints. The empty sequence
// yields zero and the order of constraints does not matter.
func Combine(constraints ...Constraint) Attributes {
	var attrs Attributes
	for _, c := range constraints {
		attrs |= c.attributes
	}
	return attrs
}

// AttributesConstraints maps declared attributes back to the predefined
// constraints that produce them.
func AttributesConstraints(attrs Attributes) []Constraint {
	var constraints []Constraint
	if attrs.Has(Covariant) {
		constraints = append(constraints, ConstraintOut)
	}
	if attrs.Has(Contravariant) {
		constraints = append(constraints, ConstraintIn)
	}
	if attrs.Has(ReferenceTypeConstraint) {
		constraints = append(constraints, ConstraintClass)
	}
	switch {
	case attrs.Has(NotNullableValueTypeConstraint):
		constraints = append(constraints, ConstraintStruct)
	case attrs.Has(DefaultConstructorConstraint):
		constraints = append(constraints, ConstraintNew)
	}
	return constraints
}

// ValidateConstraints reports combinations that cannot be declared on one
// parameter. Combine does not call it; code generators opt in.
func ValidateConstraints(constraints ...Constraint) error {
	has := make(map[constraintKind]string)
	for _, c := range constraints {
		if c.kind != customConstraint {
			has[c.kind] = c.name
		}
	}
	conflicts := [][2]constraintKind{
		{structConstraint, newConstraint},
		{unmanagedConstraint, newConstraint},
		{structConstraint, unmanagedConstraint},
		{classConstraint, structConstraint},
		{classConstraint, unmanagedConstraint},
		{inConstraint, outConstraint},
	}
	for _, pair := range conflicts {
		a, okA := has[pair[0]]
		b, okB := has[pair[1]]
		if okA && okB {
			return NewInvalidConstraintError(a, b)
		}
	}
	return nil
}
