package catalog

import (
	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// Instantiate builds the runtime type a type expression stands for.
// Expressions must be built from catalog handles. Generic parameters
// become free parameters numbered by their position in the argument list.
func Instantiate(t typesystem.Type) (*clr.Type, error) {
	return instantiate(t, 0)
}

func instantiate(t typesystem.Type, position int) (*clr.Type, error) {
	switch t := t.(type) {
	case typesystem.GenericParameterType:
		return clr.NewGenericParameter(t.Name(), position, t.Attributes()), nil
	case typesystem.NongenericType:
		h, ok := t.Handle().(*clr.Type)
		if !ok {
			return nil, typesystem.NewUnrecognizedTypeShapeError(t.Handle())
		}
		return h, nil
	case typesystem.GenericType:
		def, ok := t.Definition().(*clr.Type)
		if !ok {
			return nil, typesystem.NewUnrecognizedTypeShapeError(t.Definition())
		}
		args := make([]*clr.Type, t.Arity())
		for i, arg := range t.Arguments() {
			a, err := instantiate(arg, i)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return def.MakeGeneric(args...)
	default:
		return nil, typesystem.NewUnrecognizedTypeShapeError(t)
	}
}
