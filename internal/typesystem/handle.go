package typesystem

import "github.com/funvibe/gneedle/internal/config"

// Handle is a runtime type handle. It is implemented by the runtime type
// model (internal/clr) and by anything else able to describe a loaded type.
type Handle interface {
	// Name is the metadata name: "List`1" for definitions, "T" for parameters.
	Name() string
	Namespace() string
	// FullName is the namespace-qualified name with the enclosing-type chain
	// joined by '+'. It is empty for generic parameters and for instances
	// that still contain generic parameters.
	FullName() string
	// DeclaringType returns the enclosing type, or nil.
	DeclaringType() Handle
	IsGenericParameter() bool
	// IsGenericType reports whether the type is a generic definition or an
	// instantiation of one.
	IsGenericType() bool
	IsGenericTypeDefinition() bool
	// GenericArguments returns the parameters of a definition or the bound
	// arguments of an instantiation, in declared order.
	GenericArguments() []Handle
	// GenericTypeDefinition returns the definition of a generic type, or nil.
	GenericTypeDefinition() Handle
	// GenericParameterAttributes returns the declared constraint attributes
	// of a generic parameter and zero for every other handle.
	GenericParameterAttributes() Attributes
}

// ConstraintProvider is implemented by handles that expose the bound types
// declared on a generic parameter.
type ConstraintProvider interface {
	GenericParameterConstraints() []Handle
}

// Reference is an IL type reference read from a module.
type Reference interface {
	// FullName renders the reference the way IL tooling does: nested types
	// joined by '/', instance arguments in angle brackets.
	FullName() string
	// IsGenericInstance reports whether the reference binds arguments to a
	// generic definition.
	IsGenericInstance() bool
}

// containsGenericParameters reports whether h is, or is built from, an
// unbound generic parameter.
func containsGenericParameters(h Handle) bool {
	if h.IsGenericParameter() {
		return true
	}
	if h.IsGenericTypeDefinition() {
		return true
	}
	for _, arg := range h.GenericArguments() {
		if containsGenericParameters(arg) {
			return true
		}
	}
	return false
}

// displayName is the name used in error messages and as a last-resort
// rendering when a handle has no full name.
func displayName(h Handle) string {
	if h == nil {
		return "<nil>"
	}
	if name := h.FullName(); name != "" {
		return name
	}
	if def := h.GenericTypeDefinition(); def != nil && def.FullName() != "" {
		return def.FullName()
	}
	return h.Name()
}

// sameHandle compares two handles by identity of the type they describe.
func sameHandle(a, b Handle) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.IsGenericParameter() != b.IsGenericParameter() {
		return false
	}
	return displayName(a) == displayName(b) && a.Namespace() == b.Namespace()
}

// systemType is a minimal handle for non-generic System types the core
// needs before any runtime type model is loaded.
type systemType struct {
	name string
}

func (t systemType) Name() string      { return t.name }
func (t systemType) Namespace() string { return config.SystemNamespace }
func (t systemType) FullName() string {
	return config.SystemNamespace + "." + t.name
}
func (t systemType) DeclaringType() Handle                  { return nil }
func (t systemType) IsGenericParameter() bool               { return false }
func (t systemType) IsGenericType() bool                    { return false }
func (t systemType) IsGenericTypeDefinition() bool          { return false }
func (t systemType) GenericArguments() []Handle             { return nil }
func (t systemType) GenericTypeDefinition() Handle          { return nil }
func (t systemType) GenericParameterAttributes() Attributes { return 0 }
func (t systemType) String() string                         { return t.FullName() }

var valueTypeHandle Handle = systemType{name: config.ValueTypeName}
