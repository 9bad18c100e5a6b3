package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/gneedle/internal/assembly"
	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// defaultImports are searched for short names before the configured imports.
var defaultImports = []string{config.SystemNamespace, "System.Collections.Generic"}

// UnknownTypeError is returned when a name matches no definition.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf(config.UnknownType, e.Name)
}

func NewUnknownTypeError(name string) *UnknownTypeError {
	return &UnknownTypeError{Name: name}
}

// Catalog indexes the definitions of the core library and of the
// configured assemblies by full name.
type Catalog struct {
	imports    []string
	assemblies []*clr.Assembly
	types      map[string][]*clr.Type // newest assembly version first
}

// Default returns a catalog holding only the core library.
func Default() *Catalog {
	c := &Catalog{
		imports: append([]string(nil), defaultImports...),
		types:   make(map[string][]*clr.Type),
	}
	c.addAssembly(clr.CoreLib)
	return c
}

// Load reads gneedle.yaml at path and builds its catalog.
func Load(path string) (*Catalog, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New builds the assemblies a config declares on top of the core library.
// Bound types named in constraints must be defined by the core library or
// by an assembly listed earlier.
func New(cfg *Config) (*Catalog, error) {
	c := Default()
	c.imports = append(c.imports, cfg.Imports...)
	for i := range cfg.Assemblies {
		spec := &cfg.Assemblies[i]
		id, err := spec.Identity()
		if err != nil {
			return nil, fmt.Errorf("assemblies[%d] (%s): %w", i, spec.Name, err)
		}
		asm := clr.NewAssembly(id)
		for j := range spec.Types {
			if err := c.define(asm, nil, &spec.Types[j]); err != nil {
				return nil, fmt.Errorf("assemblies[%d].types[%d] (%s): %w", i, j, spec.Types[j].Name, err)
			}
		}
		c.addAssembly(asm)
	}
	return c, nil
}

func (c *Catalog) define(asm *clr.Assembly, declaring *clr.Type, spec *TypeSpec) error {
	params := make([]clr.ParamSpec, 0, len(spec.Params))
	for _, p := range spec.Params {
		param, err := c.paramSpec(asm, p)
		if err != nil {
			return err
		}
		params = append(params, param)
	}
	var t *clr.Type
	if declaring == nil {
		t = asm.Define(spec.Namespace, spec.Name, params...)
	} else {
		t = declaring.Nested(spec.Name, params...)
	}
	for k := range spec.Nested {
		if err := c.define(asm, t, &spec.Nested[k]); err != nil {
			return err
		}
	}
	return nil
}

// paramSpec turns constraint keywords into attributes and bound names into
// bound types. notnull has no metadata attribute and is dropped.
func (c *Catalog) paramSpec(asm *clr.Assembly, p ParamSpec) (clr.ParamSpec, error) {
	spec := clr.ParamSpec{Name: p.Name}
	for _, name := range p.Constraints {
		if kw, ok := constraintKeywords[name]; ok {
			spec.Attributes |= kw.Attributes()
			if kw.Equal(typesystem.ConstraintStruct) || kw.Equal(typesystem.ConstraintUnmanaged) {
				spec.Constraints = append(spec.Constraints, clr.ValueType)
			}
			continue
		}
		bound, ok := asm.Lookup(name)
		if !ok {
			bound, ok = c.Resolve(name)
		}
		if !ok {
			return clr.ParamSpec{}, NewUnknownTypeError(name)
		}
		if bound.IsGenericType() {
			return clr.ParamSpec{}, typesystem.NewNongenericShapeError(bound.String())
		}
		spec.Constraints = append(spec.Constraints, bound)
	}
	return spec, nil
}

func (c *Catalog) addAssembly(asm *clr.Assembly) {
	c.assemblies = append(c.assemblies, asm)
	for _, t := range asm.Types() {
		name := t.FullName()
		c.types[name] = append(c.types[name], t)
		sort.SliceStable(c.types[name], func(i, j int) bool {
			return versionOf(c.types[name][i]).Compare(versionOf(c.types[name][j])) > 0
		})
	}
}

func versionOf(t *clr.Type) assembly.Version {
	if asm := t.Assembly(); asm != nil {
		return asm.Identity().Version
	}
	return assembly.Version{}
}

// Assemblies returns the core library followed by the configured assemblies.
func (c *Catalog) Assemblies() []*clr.Assembly {
	return append([]*clr.Assembly(nil), c.assemblies...)
}

// Imports are the namespaces searched for short names.
func (c *Catalog) Imports() []string {
	return append([]string(nil), c.imports...)
}

// Lookup finds a definition by full name. When several assemblies define
// the name, the one with the highest version wins.
func (c *Catalog) Lookup(fullName string) (*clr.Type, bool) {
	candidates := c.types[fullName]
	if len(candidates) == 0 {
		return nil, false
	}
	return candidates[0], true
}

// LookupVersion finds the definition with the highest assembly version
// satisfying constraint, such as ">= 2.0, < 3". An empty constraint
// accepts any version.
func (c *Catalog) LookupVersion(fullName, constraint string) (*clr.Type, error) {
	cons, err := assembly.ParseConstraint(constraint)
	if err != nil {
		return nil, err
	}
	for _, t := range c.types[fullName] {
		if versionOf(t).Satisfies(cons) {
			return t, nil
		}
	}
	if len(c.types[fullName]) > 0 && cons != nil {
		return nil, fmt.Errorf("%w: no version satisfies %s", NewUnknownTypeError(fullName), constraint)
	}
	return nil, NewUnknownTypeError(fullName)
}

// Resolve finds a definition by full name, then by keyword alias, then
// under each import in order.
func (c *Catalog) Resolve(name string) (*clr.Type, bool) {
	if t, ok := c.Lookup(name); ok {
		return t, true
	}
	if t, ok := clr.Aliases[name]; ok {
		return t, true
	}
	for _, ns := range c.imports {
		if t, ok := c.Lookup(ns + "." + name); ok {
			return t, true
		}
	}
	return nil, false
}

// Types returns the newest definition of every name, ordered by full name.
func (c *Catalog) Types() []*clr.Type {
	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}
	sort.Strings(names)
	types := make([]*clr.Type, len(names))
	for i, name := range names {
		types[i] = c.types[name][0]
	}
	return types
}

// Definitions returns the newest generic definitions and plain types whose
// full name starts with prefix.
func (c *Catalog) Definitions(prefix string) []*clr.Type {
	var types []*clr.Type
	for _, t := range c.Types() {
		if strings.HasPrefix(t.FullName(), prefix) {
			types = append(types, t)
		}
	}
	return types
}
