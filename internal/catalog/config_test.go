package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/gneedle/internal/typesystem"
)

const collectionsYAML = `
imports:
  - Contoso.Collections
assemblies:
  - name: Contoso.Collections
    version: "2.1"
    public_key_token: ABCDEF0123456789
    types:
      - namespace: Contoso.Collections
        name: Tree
        params:
          - name: TKey
            constraints: [notnull]
          - name: TValue
        nested:
          - name: Node
          - name: Cursor
            params:
              - name: TState
                constraints: [struct]
      - namespace: Contoso.Collections
        name: Bag
`

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(collectionsYAML), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Imports) != 1 || cfg.Imports[0] != "Contoso.Collections" {
		t.Errorf("imports = %v", cfg.Imports)
	}
	if len(cfg.Assemblies) != 1 {
		t.Fatalf("expected 1 assembly, got %d", len(cfg.Assemblies))
	}
	asm := cfg.Assemblies[0]
	if asm.Version != "2.1" {
		t.Errorf("version = %q, want 2.1", asm.Version)
	}
	if asm.Culture != "neutral" {
		t.Errorf("culture = %q, want neutral (default)", asm.Culture)
	}
	if len(asm.Types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(asm.Types))
	}
	tree := asm.Types[0]
	if len(tree.Params) != 2 || tree.Params[0].Constraints[0] != "notnull" {
		t.Errorf("tree params = %+v", tree.Params)
	}
	if len(tree.Nested) != 2 || tree.Nested[1].Name != "Cursor" {
		t.Errorf("tree nested = %+v", tree.Nested)
	}

	id, err := asm.Identity()
	if err != nil {
		t.Fatal(err)
	}
	want := "Contoso.Collections, Version=2.1.0.0, Culture=neutral, PublicKeyToken=abcdef0123456789"
	if id.String() != want {
		t.Errorf("identity = %q, want %q", id, want)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	yaml := `
assemblies:
  - name: Contoso
    types:
      - namespace: Contoso
        name: Widget
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Assemblies[0].Version != "1.0.0.0" {
		t.Errorf("version = %q, want 1.0.0.0", cfg.Assemblies[0].Version)
	}
	if cfg.Assemblies[0].Culture != "neutral" {
		t.Errorf("culture = %q, want neutral", cfg.Assemblies[0].Culture)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"no assemblies",
			`imports: [Contoso]`,
			"no assemblies defined",
		},
		{
			"empty import",
			`
imports: [""]
assemblies:
  - name: A
    types: [{namespace: A, name: T}]
`,
			"namespace is empty",
		},
		{
			"missing name",
			`
assemblies:
  - types: [{namespace: A, name: T}]
`,
			"name is required",
		},
		{
			"bad version",
			`
assemblies:
  - name: A
    version: one
    types: [{namespace: A, name: T}]
`,
			"invalid assembly version",
		},
		{
			"duplicate version",
			`
assemblies:
  - name: A
    version: "1.0"
    types: [{namespace: A, name: T}]
  - name: A
    version: "1.0.0.0"
    types: [{namespace: A, name: T}]
`,
			"already declared by assemblies[0]",
		},
		{
			"no types",
			`
assemblies:
  - name: A
`,
			"no types defined",
		},
		{
			"type declared twice",
			`
assemblies:
  - name: A
    types:
      - {namespace: A, name: T, params: [{name: X}]}
      - {namespace: A, name: T, params: [{name: Y}]}
`,
			"declared twice",
		},
		{
			"qualified type name",
			`
assemblies:
  - name: A
    types: [{namespace: A, name: "List` + "`" + `1"}]
`,
			"simple identifier",
		},
		{
			"missing namespace",
			`
assemblies:
  - name: A
    types: [{name: T}]
`,
			"namespace is required",
		},
		{
			"nested namespace",
			`
assemblies:
  - name: A
    types:
      - namespace: A
        name: T
        nested: [{namespace: B, name: U}]
`,
			"take the namespace of their declaring type",
		},
		{
			"empty parameter",
			`
assemblies:
  - name: A
    types: [{namespace: A, name: T, params: [{name: ""}]}]
`,
			"generic parameter name is empty",
		},
		{
			"shadowed parameter",
			`
assemblies:
  - name: A
    types:
      - namespace: A
        name: T
        params: [{name: X}]
        nested: [{name: U, params: [{name: X}]}]
`,
			"parameter X declared twice",
		},
		{
			"empty constraint",
			`
assemblies:
  - name: A
    types: [{namespace: A, name: T, params: [{name: X, constraints: [""]}]}]
`,
			"empty constraint",
		},
		{
			"malformed yaml",
			`assemblies: [`,
			"parsing test.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "test.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseConfig_ConflictingConstraints(t *testing.T) {
	yaml := `
assemblies:
  - name: A
    types: [{namespace: A, name: T, params: [{name: X, constraints: [struct, class]}]}]
`
	_, err := ParseConfig([]byte(yaml), "test.yaml")
	var constraintErr *typesystem.InvalidConstraintError
	if !errors.As(err, &constraintErr) {
		t.Fatalf("error = %v, want InvalidConstraintError", err)
	}
	if !strings.Contains(err.Error(), "params[0]") {
		t.Errorf("error should locate the parameter: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gneedle.yaml")
	if err := os.WriteFile(path, []byte(collectionsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Assemblies[0].Name != "Contoso.Collections" {
		t.Errorf("name = %q", cfg.Assemblies[0].Name)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrNotExist", err)
	}
}

func TestFindConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "gneedle.yaml")
	if err := os.WriteFile(configPath, []byte(collectionsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	subDir := filepath.Join(tmpDir, "src", "deep")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	// FindConfig from deep subdirectory should find it
	found, err := FindConfig(subDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != configPath {
		t.Errorf("found = %q, want %q", found, configPath)
	}

	// The .yml spelling is recognized too
	otherDir := t.TempDir()
	ymlPath := filepath.Join(otherDir, "gneedle.yml")
	if err := os.WriteFile(ymlPath, []byte(collectionsYAML), 0644); err != nil {
		t.Fatal(err)
	}
	found, err = FindConfig(otherDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != ymlPath {
		t.Errorf("found = %q, want %q", found, ymlPath)
	}
}
