// Package catalog declares runtime types outside the core library.
//
// A catalog is described in gneedle.yaml: a list of assemblies, each with
// an identity and the type definitions it holds. The catalog package
// handles:
//   - Parsing and validating gneedle.yaml
//   - Building clr assemblies from the declarations
//   - Resolving type names across assemblies and versions
//   - Parsing C#-like type expressions into typesystem.Type values
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/gneedle/internal/assembly"
	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/typesystem"
)

// Config represents the top-level gneedle.yaml configuration.
type Config struct {
	// Imports are namespaces searched for short type names in expressions,
	// after System and System.Collections.Generic.
	Imports []string `yaml:"imports,omitempty"`

	// Assemblies lists the assemblies and the types they define.
	Assemblies []AssemblySpec `yaml:"assemblies"`
}

// AssemblySpec declares one assembly.
type AssemblySpec struct {
	// Name is the simple assembly name (e.g. "Contoso.Collections").
	Name string `yaml:"name"`

	// Version is the four-part assembly version. Defaults to 1.0.0.0.
	Version string `yaml:"version,omitempty"`

	// Culture defaults to "neutral".
	Culture string `yaml:"culture,omitempty"`

	// PublicKeyToken is the hex token of a strong-named assembly.
	PublicKeyToken string `yaml:"public_key_token,omitempty"`

	// Types are the top-level type definitions of the assembly.
	Types []TypeSpec `yaml:"types"`
}

// TypeSpec declares a type definition.
type TypeSpec struct {
	// Namespace is required for top-level types. Nested types take the
	// namespace of their declaring type and must leave it empty.
	Namespace string `yaml:"namespace,omitempty"`

	// Name is the simple name, without arity marker.
	Name string `yaml:"name"`

	// Params are the generic parameters the type declares itself. Nested
	// types also inherit the parameters of their declaring type.
	Params []ParamSpec `yaml:"params,omitempty"`

	// Nested are types declared inside this one.
	Nested []TypeSpec `yaml:"nested,omitempty"`
}

// ParamSpec declares a generic parameter.
type ParamSpec struct {
	Name string `yaml:"name"`

	// Constraints are keywords (class, struct, new, unmanaged, notnull,
	// in, out) or full names of bound types.
	Constraints []string `yaml:"constraints,omitempty"`
}

// constraintKeywords maps the keywords accepted in params[].constraints.
var constraintKeywords = map[string]typesystem.Constraint{
	"class":     typesystem.ConstraintClass,
	"struct":    typesystem.ConstraintStruct,
	"new":       typesystem.ConstraintNew,
	"new()":     typesystem.ConstraintNew,
	"unmanaged": typesystem.ConstraintUnmanaged,
	"notnull":   typesystem.ConstraintNotNull,
	"in":        typesystem.ConstraintIn,
	"out":       typesystem.ConstraintOut,
}

// LoadConfig reads and parses a gneedle.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses gneedle.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for gneedle.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	if len(c.Assemblies) == 0 {
		return fmt.Errorf("%s: no assemblies defined", path)
	}

	for i, imp := range c.Imports {
		if strings.TrimSpace(imp) == "" {
			return fmt.Errorf("%s: imports[%d]: namespace is empty", path, i)
		}
	}

	seen := make(map[string]int) // "name version" → index

	for i, asm := range c.Assemblies {
		if asm.Name == "" {
			return fmt.Errorf("%s: assemblies[%d]: name is required", path, i)
		}
		version := asm.Version
		if version == "" {
			version = config.DefaultAssemblyVersion
		}
		v, err := assembly.ParseVersion(version)
		if err != nil {
			return fmt.Errorf("%s: assemblies[%d] (%s): %w", path, i, asm.Name, err)
		}
		key := asm.Name + " " + v.String()
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%s: assemblies[%d] (%s): version %s already declared by assemblies[%d]",
				path, i, asm.Name, v, prev)
		}
		seen[key] = i

		if len(asm.Types) == 0 {
			return fmt.Errorf("%s: assemblies[%d] (%s): no types defined", path, i, asm.Name)
		}

		names := make(map[string]bool)
		for j := range asm.Types {
			where := fmt.Sprintf("%s: assemblies[%d].types[%d]", path, i, j)
			if err := asm.Types[j].validate(where, true, nil); err != nil {
				return err
			}
			full := asm.Types[j].Namespace + "." + asm.Types[j].Name + arity(len(asm.Types[j].Params))
			if names[full] {
				return fmt.Errorf("%s (%s): type %s declared twice", where, asm.Name, full)
			}
			names[full] = true
		}
	}

	return nil
}

func (t *TypeSpec) validate(where string, topLevel bool, inherited map[string]bool) error {
	if t.Name == "" {
		return fmt.Errorf("%s: name is required", where)
	}
	if strings.ContainsAny(t.Name, "`+/.<>[],& *") {
		return fmt.Errorf("%s (%s): name must be a simple identifier", where, t.Name)
	}
	if topLevel && t.Namespace == "" {
		return fmt.Errorf("%s (%s): namespace is required", where, t.Name)
	}
	if !topLevel && t.Namespace != "" {
		return fmt.Errorf("%s (%s): nested types take the namespace of their declaring type", where, t.Name)
	}

	params := make(map[string]bool, len(inherited)+len(t.Params))
	for name := range inherited {
		params[name] = true
	}
	for k, p := range t.Params {
		if p.Name == "" {
			return fmt.Errorf("%s.params[%d] (%s): %s", where, k, t.Name, config.EmptyParameterName)
		}
		if params[p.Name] {
			return fmt.Errorf("%s.params[%d] (%s): parameter %s declared twice", where, k, t.Name, p.Name)
		}
		params[p.Name] = true

		var special []typesystem.Constraint
		for _, c := range p.Constraints {
			if c == "" {
				return fmt.Errorf("%s.params[%d] (%s): empty constraint", where, k, t.Name)
			}
			if kw, ok := constraintKeywords[c]; ok {
				special = append(special, kw)
			}
		}
		if err := typesystem.ValidateConstraints(special...); err != nil {
			return fmt.Errorf("%s.params[%d] (%s): %w", where, k, t.Name, err)
		}
	}

	for k := range t.Nested {
		if err := t.Nested[k].validate(fmt.Sprintf("%s.nested[%d]", where, k), false, params); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	for i := range c.Assemblies {
		if c.Assemblies[i].Version == "" {
			c.Assemblies[i].Version = config.DefaultAssemblyVersion
		}
		if c.Assemblies[i].Culture == "" {
			c.Assemblies[i].Culture = config.NeutralCulture
		}
	}
}

// Identity returns the declared assembly identity.
func (a *AssemblySpec) Identity() (assembly.Identity, error) {
	v, err := assembly.ParseVersion(a.Version)
	if err != nil {
		return assembly.Identity{}, err
	}
	return assembly.Identity{
		Name:           a.Name,
		Version:        v,
		Culture:        a.Culture,
		PublicKeyToken: strings.ToLower(a.PublicKeyToken),
	}, nil
}

func arity(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%c%d", config.ArityMarker, n)
}
