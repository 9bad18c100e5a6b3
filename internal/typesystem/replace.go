package typesystem

// RenameParameters renames generic parameters, keeping their constraints.
// Parameters missing from the mapping keep their name. It is useful when
// two open expressions declared with clashing parameter names are combined.
func RenameParameters(t Type, mapping map[string]string) Type {
	if t == nil {
		return nil
	}
	switch typ := t.(type) {
	case GenericParameterType:
		if name, ok := mapping[typ.name]; ok && name != "" {
			return GenericParameterType{name: name, constraints: typ.constraints}
		}
		return typ
	case GenericType:
		newArgs := make([]Type, len(typ.arguments))
		for i, arg := range typ.arguments {
			newArgs[i] = RenameParameters(arg, mapping)
		}
		return GenericType{definition: typ.definition, arguments: newArgs}
	default:
		return t
	}
}
