package typesystem

import (
	"strings"

	"github.com/funvibe/gneedle/internal/config"
)

// Type is a representation-independent type expression. The set of
// implementations is closed: GenericParameterType, NongenericType and
// GenericType. Every consumer switches over exactly these three.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeParameters() []GenericParameterType
	typeExpr()
}

// Subst maps generic parameter names to the expressions bound to them.
type Subst map[string]Type

// GenericParameterType represents an unbound type variable (e.g. 'T').
type GenericParameterType struct {
	name        string
	constraints []Constraint
}

// NewGenericParameterType creates a parameter with the given constraints.
func NewGenericParameterType(name string, constraints ...Constraint) (GenericParameterType, error) {
	if name == "" {
		return GenericParameterType{}, &InvalidShapeError{Message: config.EmptyParameterName}
	}
	return GenericParameterType{name: name, constraints: append([]Constraint(nil), constraints...)}, nil
}

// Param is NewGenericParameterType for names known to be valid.
// It panics on an empty name.
func Param(name string, constraints ...Constraint) GenericParameterType {
	p, err := NewGenericParameterType(name, constraints...)
	if err != nil {
		panic(err)
	}
	return p
}

func (t GenericParameterType) typeExpr() {}

func (t GenericParameterType) Name() string { return t.name }

func (t GenericParameterType) Constraints() []Constraint {
	return append([]Constraint(nil), t.constraints...)
}

// Attributes is the merged attribute set of all declared constraints.
func (t GenericParameterType) Attributes() Attributes {
	return Combine(t.constraints...)
}

func (t GenericParameterType) String() string { return t.name }

func (t GenericParameterType) Apply(s Subst) Type {
	if replacement, ok := s[t.name]; ok && replacement != nil {
		return replacement
	}
	return t
}

func (t GenericParameterType) FreeParameters() []GenericParameterType {
	return []GenericParameterType{t}
}

// NongenericType wraps a fully resolved type without generic parameters
// or arguments.
type NongenericType struct {
	handle Handle
}

// NewNongenericType fails when h carries any generic parameter or argument.
func NewNongenericType(h Handle) (NongenericType, error) {
	if h == nil {
		return NongenericType{}, NewNongenericShapeError(displayName(h))
	}
	if h.IsGenericParameter() || h.IsGenericType() || len(h.GenericArguments()) > 0 {
		return NongenericType{}, NewNongenericShapeError(displayName(h))
	}
	return NongenericType{handle: h}, nil
}

func (t NongenericType) typeExpr() {}

func (t NongenericType) Handle() Handle { return t.handle }

func (t NongenericType) String() string {
	if t.handle == nil {
		return "<invalid>"
	}
	return displayName(t.handle)
}

func (t NongenericType) Apply(Subst) Type { return t }

func (t NongenericType) FreeParameters() []GenericParameterType { return nil }

// GenericType is a generic definition applied to argument expressions.
// Samples:
//
//	MyClass<T1, T2>     open
//	MyClass<int, string> closed
//	MyClass<T, string>  mixed
//
// A plain MyClass is not a GenericType.
type GenericType struct {
	definition Handle
	arguments  []Type
}

// NewGenericType applies def to args. A constructed handle is normalized to
// its generic type definition. The number of arguments must match the arity.
func NewGenericType(def Handle, args ...Type) (GenericType, error) {
	if def == nil || def.IsGenericParameter() || !def.IsGenericType() {
		return GenericType{}, NewGenericShapeError(displayName(def))
	}
	if !def.IsGenericTypeDefinition() {
		if d := def.GenericTypeDefinition(); d != nil {
			def = d
		}
	}
	if arity := len(def.GenericArguments()); arity != len(args) {
		return GenericType{}, NewArityError(displayName(def), arity, len(args))
	}
	for _, arg := range args {
		if arg == nil {
			return GenericType{}, NewUnrecognizedTypeShapeError(arg)
		}
	}
	return GenericType{definition: def, arguments: append([]Type(nil), args...)}, nil
}

// NewGenericTypeFromNames applies def to fresh parameters with the given
// names, e.g. NewGenericTypeFromNames(dictionary, "TKey", "TValue").
func NewGenericTypeFromNames(def Handle, names ...string) (GenericType, error) {
	args := make([]Type, len(names))
	for i, name := range names {
		p, err := NewGenericParameterType(name)
		if err != nil {
			return GenericType{}, err
		}
		args[i] = p
	}
	return NewGenericType(def, args...)
}

// NewGenericTypeFromHandles applies def to runtime handles, each classified
// with FromHandle.
func NewGenericTypeFromHandles(def Handle, handles ...Handle) (GenericType, error) {
	args := make([]Type, len(handles))
	for i, h := range handles {
		arg, err := FromHandle(h)
		if err != nil {
			return GenericType{}, err
		}
		args[i] = arg
	}
	return NewGenericType(def, args...)
}

func (t GenericType) typeExpr() {}

// Definition returns the generic type definition handle.
func (t GenericType) Definition() Handle { return t.definition }

func (t GenericType) Arguments() []Type {
	return append([]Type(nil), t.arguments...)
}

// Arity is the number of generic arguments.
func (t GenericType) Arity() int { return len(t.arguments) }

func (t GenericType) String() string {
	if name, err := NameOf(t); err == nil {
		return name.String()
	}
	if t.definition == nil {
		return "<invalid>"
	}
	args := make([]string, len(t.arguments))
	for i, a := range t.arguments {
		if a != nil {
			args[i] = a.String()
		}
	}
	return displayName(t.definition) + "[" + strings.Join(args, ",") + "]"
}

func (t GenericType) Apply(s Subst) Type {
	newArgs := make([]Type, len(t.arguments))
	for i, arg := range t.arguments {
		newArgs[i] = arg.Apply(s)
	}
	return GenericType{definition: t.definition, arguments: newArgs}
}

func (t GenericType) FreeParameters() []GenericParameterType {
	var params []GenericParameterType
	for _, arg := range t.arguments {
		params = append(params, arg.FreeParameters()...)
	}
	return uniqueParameters(params)
}

// FromHandle classifies a runtime handle: generic parameters become
// GenericParameterType, non-generic handles NongenericType and generic
// handles GenericType with every argument classified the same way.
func FromHandle(h Handle) (Type, error) {
	if h == nil {
		return nil, NewUnrecognizedTypeShapeError(h)
	}
	if h.IsGenericParameter() {
		return parameterFromHandle(h)
	}
	if !h.IsGenericType() {
		return NewNongenericType(h)
	}
	args := make([]Type, 0, len(h.GenericArguments()))
	for _, a := range h.GenericArguments() {
		arg, err := FromHandle(a)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return NewGenericType(h, args...)
}

// parameterFromHandle keeps the declared constraints of a parameter handle:
// special constraints map back to the named singletons, bound types become
// custom constraints.
func parameterFromHandle(h Handle) (Type, error) {
	constraints := AttributesConstraints(h.GenericParameterAttributes())
	if cp, ok := h.(ConstraintProvider); ok {
		for _, bound := range cp.GenericParameterConstraints() {
			if sameHandle(bound, valueTypeHandle) {
				// Implied by the struct constraint.
				continue
			}
			c, err := ConstraintFromHandle(bound)
			if err != nil {
				return nil, err
			}
			constraints = append(constraints, c)
		}
	}
	return NewGenericParameterType(h.Name(), constraints...)
}

// IsClosed reports whether t has no free generic parameters.
func IsClosed(t Type) bool {
	return t != nil && len(t.FreeParameters()) == 0
}

// Equal reports whether two expressions have the same structure.
// Parameters are compared by name. Their constraints are declaration
// metadata and take no part in identity, as in canonical names.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case GenericParameterType:
		y, ok := b.(GenericParameterType)
		return ok && x.name == y.name
	case NongenericType:
		y, ok := b.(NongenericType)
		return ok && sameHandle(x.handle, y.handle)
	case GenericType:
		y, ok := b.(GenericType)
		if !ok || !sameHandle(x.definition, y.definition) || len(x.arguments) != len(y.arguments) {
			return false
		}
		for i := range x.arguments {
			if !Equal(x.arguments[i], y.arguments[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compose returns s1 applied after s2.
func (s1 Subst) Compose(s2 Subst) Subst {
	subst := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		if v == nil {
			continue
		}
		subst[k] = v.Apply(s1)
	}
	for k, v := range s1 {
		if _, ok := subst[k]; !ok {
			subst[k] = v
		}
	}
	return subst
}

func uniqueParameters(params []GenericParameterType) []GenericParameterType {
	seen := make(map[string]bool, len(params))
	result := make([]GenericParameterType, 0, len(params))
	for _, p := range params {
		if !seen[p.name] {
			seen[p.name] = true
			result = append(result, p)
		}
	}
	return result
}
