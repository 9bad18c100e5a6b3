// Package clr is an in-memory model of runtime types: assemblies, generic
// definitions, their instantiations and generic parameters. Its Type
// implements typesystem.Handle and renders names the way the runtime does.
package clr

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/funvibe/gneedle/internal/assembly"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// Assembly owns type definitions.
type Assembly struct {
	identity assembly.Identity

	mu    sync.RWMutex
	types map[string]*Type
}

func NewAssembly(id assembly.Identity) *Assembly {
	return &Assembly{identity: id, types: make(map[string]*Type)}
}

func (a *Assembly) Identity() assembly.Identity { return a.identity }

func (a *Assembly) String() string { return a.identity.String() }

// ParamSpec declares a generic parameter of a definition.
type ParamSpec struct {
	Name        string
	Attributes  typesystem.Attributes
	Constraints []*Type
}

// Params declares unconstrained parameters.
func Params(names ...string) []ParamSpec {
	specs := make([]ParamSpec, len(names))
	for i, name := range names {
		specs[i] = ParamSpec{Name: name}
	}
	return specs
}

// Define declares a top-level type. A non-empty params list makes it a
// generic type definition.
func (a *Assembly) Define(namespace, name string, params ...ParamSpec) *Type {
	t := &Type{assembly: a, namespace: namespace, name: name, ownArity: len(params)}
	t.params = makeParams(t, nil, params)
	a.register(t)
	return t
}

// Lookup finds a definition by full name.
func (a *Assembly) Lookup(fullName string) (*Type, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.types[fullName]
	return t, ok
}

// Types returns all definitions ordered by full name.
func (a *Assembly) Types() []*Type {
	a.mu.RLock()
	defer a.mu.RUnlock()
	types := make([]*Type, 0, len(a.types))
	for _, t := range a.types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].FullName() < types[j].FullName() })
	return types
}

func (a *Assembly) register(t *Type) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types[t.FullName()] = t
}

// Type is a runtime type: a plain type, a generic definition, an
// instantiation of a definition or a generic parameter.
type Type struct {
	assembly  *Assembly
	namespace string
	name      string
	declaring *Type

	// Definitions: all generic parameters, inherited ones first.
	params   []*Type
	ownArity int

	// Instantiations.
	definition *Type
	args       []*Type

	// Generic parameters.
	isParam     bool
	position    int
	attributes  typesystem.Attributes
	constraints []*Type
	owner       *Type
}

func makeParams(owner *Type, inherited []*Type, own []ParamSpec) []*Type {
	params := make([]*Type, 0, len(inherited)+len(own))
	for _, p := range inherited {
		params = append(params, &Type{
			isParam:     true,
			name:        p.name,
			position:    len(params),
			attributes:  p.attributes,
			constraints: p.constraints,
			owner:       owner,
		})
	}
	for _, spec := range own {
		params = append(params, &Type{
			isParam:     true,
			name:        spec.Name,
			position:    len(params),
			attributes:  spec.Attributes,
			constraints: append([]*Type(nil), spec.Constraints...),
			owner:       owner,
		})
	}
	return params
}

// NewGenericParameter creates a generic parameter that no type declares,
// such as a parameter named inside a type expression.
func NewGenericParameter(name string, position int, attrs typesystem.Attributes, constraints ...*Type) *Type {
	return &Type{
		isParam:     true,
		name:        name,
		position:    position,
		attributes:  attrs,
		constraints: append([]*Type(nil), constraints...),
	}
}

// Nested declares a type nested in t. The nested type inherits the generic
// parameters of t and may declare its own.
func (t *Type) Nested(name string, params ...ParamSpec) *Type {
	nested := &Type{
		assembly:  t.assembly,
		namespace: t.namespace,
		name:      name,
		declaring: t,
		ownArity:  len(params),
	}
	nested.params = makeParams(nested, t.params, params)
	if t.assembly != nil {
		t.assembly.register(nested)
	}
	return nested
}

// MakeGeneric binds args to the parameters of a generic definition.
func (t *Type) MakeGeneric(args ...*Type) (*Type, error) {
	if !t.IsGenericTypeDefinition() {
		return nil, typesystem.NewGenericShapeError(t.String())
	}
	if len(args) != len(t.params) {
		return nil, typesystem.NewArityError(t.FullName(), len(t.params), len(args))
	}
	for _, arg := range args {
		if arg == nil {
			return nil, typesystem.NewArityError(t.FullName(), len(t.params), len(args))
		}
	}
	return &Type{
		assembly:   t.assembly,
		namespace:  t.namespace,
		name:       t.name,
		declaring:  t.declaring,
		definition: t,
		args:       append([]*Type(nil), args...),
	}, nil
}

// MustMakeGeneric is MakeGeneric for instantiations known to be valid.
func (t *Type) MustMakeGeneric(args ...*Type) *Type {
	inst, err := t.MakeGeneric(args...)
	if err != nil {
		panic(err)
	}
	return inst
}

// Param returns the i-th generic parameter of a definition.
func (t *Type) Param(i int) *Type {
	return t.params[i]
}

func (t *Type) Assembly() *Assembly {
	if t.isParam && t.owner != nil {
		return t.owner.Assembly()
	}
	return t.assembly
}

// Name is the metadata name: the simple name followed by "`N" when the
// type declares N generic parameters of its own.
func (t *Type) Name() string {
	if t.definition != nil {
		return t.definition.Name()
	}
	if t.ownArity > 0 {
		return t.name + string(config.ArityMarker) + strconv.Itoa(t.ownArity)
	}
	return t.name
}

func (t *Type) Namespace() string {
	if t.isParam && t.owner != nil {
		return t.owner.Namespace()
	}
	return t.namespace
}

// metadataName is the namespace-qualified name with '+' between nested types.
func (t *Type) metadataName() string {
	if t.definition != nil {
		return t.definition.metadataName()
	}
	if t.declaring != nil {
		return t.declaring.metadataName() + string(config.NestedSeparator) + t.Name()
	}
	if t.namespace == "" {
		return t.Name()
	}
	return t.namespace + "." + t.Name()
}

// FullName follows the runtime: empty for generic parameters and for
// instantiations that still contain parameters, assembly-qualified
// arguments for closed instantiations.
func (t *Type) FullName() string {
	if t.isParam {
		return ""
	}
	if t.definition == nil {
		return t.metadataName()
	}
	if t.containsGenericParameters() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(t.metadataName())
	sb.WriteByte('[')
	for i, arg := range t.args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('[')
		sb.WriteString(arg.AssemblyQualifiedName())
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// AssemblyQualifiedName is the full name followed by the assembly display
// name, or empty when the full name is.
func (t *Type) AssemblyQualifiedName() string {
	fullName := t.FullName()
	if fullName == "" {
		return ""
	}
	if asm := t.Assembly(); asm != nil {
		return fullName + ", " + asm.String()
	}
	return fullName
}

// String renders the type without assembly qualification, definitions
// with their parameter names: List`1[T], List`1[System.Int32].
func (t *Type) String() string {
	if t.isParam {
		return t.name
	}
	var args []*Type
	switch {
	case t.definition != nil:
		args = t.args
	case len(t.params) > 0:
		args = t.params
	default:
		return t.metadataName()
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return t.metadataName() + "[" + strings.Join(parts, ",") + "]"
}

func (t *Type) DeclaringType() typesystem.Handle {
	if t.isParam || t.declaring == nil {
		return nil
	}
	return t.declaring
}

func (t *Type) IsGenericParameter() bool { return t.isParam }

func (t *Type) IsGenericType() bool {
	return t.definition != nil || len(t.params) > 0
}

func (t *Type) IsGenericTypeDefinition() bool {
	return t.definition == nil && len(t.params) > 0
}

func (t *Type) GenericArguments() []typesystem.Handle {
	var src []*Type
	switch {
	case t.definition != nil:
		src = t.args
	case len(t.params) > 0:
		src = t.params
	default:
		return nil
	}
	handles := make([]typesystem.Handle, len(src))
	for i, h := range src {
		handles[i] = h
	}
	return handles
}

func (t *Type) GenericTypeDefinition() typesystem.Handle {
	switch {
	case t.definition != nil:
		return t.definition
	case len(t.params) > 0:
		return t
	default:
		return nil
	}
}

func (t *Type) GenericParameterAttributes() typesystem.Attributes {
	if !t.isParam {
		return 0
	}
	return t.attributes
}

// GenericParameterConstraints returns the bound types declared on a
// generic parameter.
func (t *Type) GenericParameterConstraints() []typesystem.Handle {
	handles := make([]typesystem.Handle, len(t.constraints))
	for i, c := range t.constraints {
		handles[i] = c
	}
	return handles
}

// GenericParameterPosition is the index of a parameter in its owner's list.
func (t *Type) GenericParameterPosition() int { return t.position }

func (t *Type) containsGenericParameters() bool {
	if t.isParam || t.IsGenericTypeDefinition() {
		return true
	}
	for _, arg := range t.args {
		if arg.containsGenericParameters() {
			return true
		}
	}
	return false
}
