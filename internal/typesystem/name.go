package typesystem

import (
	"strings"

	"github.com/funvibe/gneedle/internal/config"
)

// Name is the canonical identity of a type. The same logical type yields the
// same Name whether it is derived from a runtime handle, an IL reference or a
// type expression, and the string form can be used verbatim to look the type
// up in either representation.
//
// The naming rules are:
//
//	non-generic            Namespace.Outer+Name
//	all-parameter generic  Namespace.Outer+Name`N
//	anything else          Namespace.Outer+Name`N[Arg1,...,ArgN]
//
// For example:
//
//	List<T>.Enumerator  System.Collections.Generic.List`1+Enumerator
//	List<T>             System.Collections.Generic.List`1
//	List<int>           System.Collections.Generic.List`1[System.Int32]
//	List<List<T>>       System.Collections.Generic.List`1[System.Collections.Generic.List`1[T]]
//	Dictionary<K, V>    System.Collections.Generic.Dictionary`2
//	Dictionary<string, int>
//	                    System.Collections.Generic.Dictionary`2[System.String,System.Int32]
//
// Names are compared ordinally with ==.
type Name struct {
	value string
}

func (n Name) String() string { return n.value }

func (n Name) IsZero() bool { return n.value == "" }

func (n Name) Equal(other Name) bool { return n.value == other.value }

// EqualString compares the name with a plain string.
func (n Name) EqualString(s string) bool { return n.value == s }

// position tells the name function whether it renders the outermost type or
// an argument of an enclosing generic.
type position int

const (
	outermost position = iota
	nested
)

// NameOf derives the canonical name of a type expression.
func NameOf(t Type) (Name, error) {
	var sb strings.Builder
	if err := writeName(&sb, t, outermost); err != nil {
		return Name{}, err
	}
	return Name{value: sb.String()}, nil
}

// writeName renders t. Only at the outermost position does a generic whose
// arguments are all parameters drop its argument list: List<T> prints as
// List`1 while List<List<T>> prints as List`1[List`1[T]].
func writeName(sb *strings.Builder, t Type, pos position) error {
	switch typ := t.(type) {
	case GenericParameterType:
		if typ.name == "" {
			return NewUnrecognizedTypeShapeError(t)
		}
		sb.WriteString(typ.name)
		return nil
	case NongenericType:
		if typ.handle == nil {
			return NewUnrecognizedTypeShapeError(t)
		}
		sb.WriteString(definitionName(typ.handle))
		return nil
	case GenericType:
		if typ.definition == nil {
			return NewUnrecognizedTypeShapeError(t)
		}
		sb.WriteString(definitionName(typ.definition))
		if pos == outermost && allParameters(typ.arguments) {
			return nil
		}
		sb.WriteByte('[')
		for i, arg := range typ.arguments {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := writeName(sb, arg, nested); err != nil {
				return err
			}
		}
		sb.WriteByte(']')
		return nil
	default:
		return NewUnrecognizedTypeShapeError(t)
	}
}

func allParameters(args []Type) bool {
	for _, arg := range args {
		if _, ok := arg.(GenericParameterType); !ok {
			return false
		}
	}
	return true
}

func definitionName(h Handle) string {
	if name := h.FullName(); name != "" {
		return name
	}
	return h.Name()
}

// NameOfHandle derives the canonical name of a runtime type handle.
func NameOfHandle(h Handle) (Name, error) {
	t, err := FromHandle(h)
	if err != nil {
		return Name{}, err
	}
	return NameOf(t)
}

// NameOfReference derives the canonical name of an IL type reference.
// Generic instances are rendered with angle brackets by IL tooling; the
// brackets are rewritten to the runtime form and every argument loses its
// assembly qualification.
func NameOfReference(r Reference) (Name, error) {
	if r == nil {
		return Name{}, NewUnrecognizedTypeShapeError(r)
	}
	fullName := r.FullName()
	if fullName == "" {
		return Name{}, ErrInvalidTypeName
	}
	if !r.IsGenericInstance() {
		return Name{value: runtimeSeparators(fullName)}, nil
	}
	var sb strings.Builder
	sb.Grow(len(fullName))
	for i := 0; i < len(fullName); i++ {
		switch c := fullName[i]; c {
		case '<':
			sb.WriteByte('[')
		case '>':
			sb.WriteByte(']')
		case config.ILNestedSeparator:
			sb.WriteByte(config.NestedSeparator)
		default:
			sb.WriteByte(c)
		}
	}
	return ParseName(sb.String())
}

// ParseName normalizes a runtime or IL rendering of a type to its canonical
// name. Assembly qualifications are dropped, angle brackets become square
// brackets and IL nested-type separators become '+'.
func ParseName(s string) (Name, error) {
	tn, err := ParseTypeName(s)
	if err != nil {
		return Name{}, err
	}
	return Name{value: tn.Strip().String()}, nil
}

func runtimeSeparators(s string) string {
	return strings.ReplaceAll(s, string(config.ILNestedSeparator), string(config.NestedSeparator))
}
