// Package il models type references as IL tooling sees them inside a
// module: definitions and references named "Namespace.Outer/Inner",
// generic parameters, and generic instances rendered with angle brackets.
package il

import (
	"strconv"
	"strings"

	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// TypeReference is a reference to a plain type or a generic definition.
type TypeReference struct {
	namespace         string
	name              string
	declaring         *TypeReference
	genericParameters []*GenericParameter
}

// GenericParameter is a generic parameter of a type.
type GenericParameter struct {
	name     string
	position int
	owner    *TypeReference
}

// GenericInstanceType binds arguments to a generic definition.
type GenericInstanceType struct {
	element   *TypeReference
	arguments []typesystem.Reference
}

func newTypeReference(namespace, name string, declaring *TypeReference, own []string) *TypeReference {
	ref := &TypeReference{namespace: namespace, declaring: declaring, name: name}
	if declaring != nil {
		// Nested references carry no namespace of their own.
		ref.namespace = ""
		for _, p := range declaring.genericParameters {
			ref.genericParameters = append(ref.genericParameters, &GenericParameter{name: p.name, position: len(ref.genericParameters), owner: ref})
		}
	}
	if len(own) > 0 {
		ref.name += string(config.ArityMarker) + strconv.Itoa(len(own))
	}
	for _, p := range own {
		ref.genericParameters = append(ref.genericParameters, &GenericParameter{name: p, position: len(ref.genericParameters), owner: ref})
	}
	return ref
}

// Name is the metadata name including the arity marker.
func (r *TypeReference) Name() string { return r.name }

func (r *TypeReference) Namespace() string { return r.namespace }

func (r *TypeReference) DeclaringType() *TypeReference { return r.declaring }

func (r *TypeReference) GenericParameters() []*GenericParameter {
	return append([]*GenericParameter(nil), r.genericParameters...)
}

func (r *TypeReference) HasGenericParameters() bool { return len(r.genericParameters) > 0 }

func (r *TypeReference) FullName() string {
	if r.declaring != nil {
		return r.declaring.FullName() + string(config.ILNestedSeparator) + r.name
	}
	if r.namespace == "" {
		return r.name
	}
	return r.namespace + "." + r.name
}

func (r *TypeReference) IsGenericInstance() bool { return false }

func (r *TypeReference) String() string { return r.FullName() }

// MakeGenericInstance binds args to the parameters of r.
func (r *TypeReference) MakeGenericInstance(args ...typesystem.Reference) (*GenericInstanceType, error) {
	if !r.HasGenericParameters() {
		return nil, typesystem.NewGenericShapeError(r.FullName())
	}
	if len(args) != len(r.genericParameters) {
		return nil, typesystem.NewArityError(r.FullName(), len(r.genericParameters), len(args))
	}
	return &GenericInstanceType{element: r, arguments: append([]typesystem.Reference(nil), args...)}, nil
}

// Open instantiates r over its own generic parameters.
func (r *TypeReference) Open() *GenericInstanceType {
	args := make([]typesystem.Reference, len(r.genericParameters))
	for i, p := range r.genericParameters {
		args[i] = p
	}
	return &GenericInstanceType{element: r, arguments: args}
}

func (p *GenericParameter) Name() string { return p.name }

func (p *GenericParameter) Position() int { return p.position }

// Owner is the type declaring the parameter, or nil for parameters imported
// without their owner.
func (p *GenericParameter) Owner() *TypeReference { return p.owner }

func (p *GenericParameter) FullName() string { return p.name }

func (p *GenericParameter) IsGenericInstance() bool { return false }

func (p *GenericParameter) String() string { return p.name }

// ElementType is the generic definition being instantiated.
func (g *GenericInstanceType) ElementType() *TypeReference { return g.element }

func (g *GenericInstanceType) GenericArguments() []typesystem.Reference {
	return append([]typesystem.Reference(nil), g.arguments...)
}

func (g *GenericInstanceType) FullName() string {
	var sb strings.Builder
	sb.WriteString(g.element.FullName())
	sb.WriteByte('<')
	for i, arg := range g.arguments {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(arg.FullName())
	}
	sb.WriteByte('>')
	return sb.String()
}

func (g *GenericInstanceType) IsGenericInstance() bool { return true }

func (g *GenericInstanceType) String() string { return g.FullName() }
