package typesystem

import "fmt"

// Match finds the substitution that turns pattern into actual. Parameters
// are only bound on the pattern side, so List<T> matches List<int> with
// T = int but List<int> does not match List<T>. A parameter bound twice
// must be bound to the same expression both times.
func Match(pattern, actual Type) (Subst, error) {
	s := make(Subst)
	if err := matchInternal(pattern, actual, s); err != nil {
		return nil, err
	}
	return s, nil
}

func matchInternal(pattern, actual Type, s Subst) error {
	switch p := pattern.(type) {
	case GenericParameterType:
		if bound, ok := s[p.name]; ok {
			if !Equal(bound, actual) {
				return errMatchMsg(bound, actual, fmt.Sprintf("parameter %s bound twice", p.name))
			}
			return nil
		}
		if occurs(p, actual) {
			return errMismatch(fmt.Sprintf("infinite type detected: %s in %s", p, actual))
		}
		s[p.name] = actual
		return nil
	case NongenericType:
		if a, ok := actual.(NongenericType); ok && sameHandle(p.handle, a.handle) {
			return nil
		}
		return errMatch(pattern, actual)
	case GenericType:
		a, ok := actual.(GenericType)
		if !ok {
			return errMatch(pattern, actual)
		}
		if !sameHandle(p.definition, a.definition) || len(p.arguments) != len(a.arguments) {
			return errMatchMsg(pattern, actual, "generic definition mismatch")
		}
		for i := range p.arguments {
			if err := matchInternal(p.arguments[i], a.arguments[i], s); err != nil {
				return errMatchContext(fmt.Sprintf("argument %d of %s", i+1, displayName(p.definition)), err)
			}
		}
		return nil
	default:
		return NewUnrecognizedTypeShapeError(pattern)
	}
}

// occurs reports whether p appears free in t. A parameter matched against
// itself is not an occurrence.
func occurs(p GenericParameterType, t Type) bool {
	if q, ok := t.(GenericParameterType); ok && q.name == p.name {
		return false
	}
	for _, v := range t.FreeParameters() {
		if v.name == p.name {
			return true
		}
	}
	return false
}

func errMatch(t1, t2 Type) error {
	return fmt.Errorf("cannot match %s with %s", t1, t2)
}

func errMatchMsg(t1, t2 Type, msg string) error {
	return fmt.Errorf("%s: %s vs %s", msg, t1, t2)
}

func errMismatch(msg string) error {
	return fmt.Errorf("type mismatch: %s", msg)
}

func errMatchContext(ctx string, err error) error {
	return fmt.Errorf("in %s: %w", ctx, err)
}
