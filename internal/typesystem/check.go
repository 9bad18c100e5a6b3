package typesystem

// Validate walks an expression and reports the first malformed node:
// a zero-value variant, an empty parameter name or an argument list that
// does not match its definition's arity.
func Validate(t Type) error {
	switch typ := t.(type) {
	case GenericParameterType:
		if typ.name == "" {
			return NewUnrecognizedTypeShapeError(t)
		}
		return nil
	case NongenericType:
		if typ.handle == nil {
			return NewUnrecognizedTypeShapeError(t)
		}
		return nil
	case GenericType:
		if typ.definition == nil {
			return NewUnrecognizedTypeShapeError(t)
		}
		if arity := len(typ.definition.GenericArguments()); arity != len(typ.arguments) {
			return NewArityError(displayName(typ.definition), arity, len(typ.arguments))
		}
		for _, arg := range typ.arguments {
			if err := Validate(arg); err != nil {
				return err
			}
		}
		return nil
	default:
		return NewUnrecognizedTypeShapeError(t)
	}
}
