package typesystem

import (
	"errors"
	"testing"
)

func TestParseName(t *testing.T) {
	const corelib = "System.Private.CoreLib, Version=8.0.0.0, Culture=neutral, PublicKeyToken=7cec85d7bea7798e"

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "System.Int32", "System.Int32"},
		{"qualified plain", "System.Int32, " + corelib, "System.Int32"},
		{"definition", "System.Collections.Generic.List`1", "System.Collections.Generic.List`1"},
		{"bare argument", "System.Collections.Generic.List`1[System.Int32]", "System.Collections.Generic.List`1[System.Int32]"},
		{
			"qualified argument",
			"System.Collections.Generic.List`1[[System.Int32, " + corelib + "]]",
			"System.Collections.Generic.List`1[System.Int32]",
		},
		{
			"qualified arguments and type",
			"System.Collections.Generic.Dictionary`2[[System.String, " + corelib + "],[System.Int32, " + corelib + "]], " + corelib,
			"System.Collections.Generic.Dictionary`2[System.String,System.Int32]",
		},
		{
			"bare argument with qualification",
			"System.Collections.Generic.List`1[System.Int32, " + corelib + "]",
			"System.Collections.Generic.List`1[System.Int32]",
		},
		{
			"angle brackets",
			"System.Collections.Generic.Dictionary`2<System.String,System.Collections.Generic.List`1<System.Int32>>",
			"System.Collections.Generic.Dictionary`2[System.String,System.Collections.Generic.List`1[System.Int32]]",
		},
		{"nested il", "Contoso.Outer`1/Inner<System.Int32>", "Contoso.Outer`1+Inner[System.Int32]"},
		{"nested runtime", "Contoso.Outer`1+Inner[T]", "Contoso.Outer`1+Inner[T]"},
		{"array", "System.Int32[]", "System.Int32[]"},
		{"jagged array of generic", "System.Collections.Generic.List`1[System.Int32][][,]", "System.Collections.Generic.List`1[System.Int32][][,]"},
		{"pointer and byref", "System.Int32*&", "System.Int32*&"},
		{"array argument", "System.Collections.Generic.List`1[System.Int32[]]", "System.Collections.Generic.List`1[System.Int32[]]"},
		{"surrounding space", "  System.Int32  ", "System.Int32"},
		{
			"spaced angle arguments",
			"System.Collections.Generic.Dictionary`2<System.String, System.Int32>",
			"System.Collections.Generic.Dictionary`2[System.String,System.Int32]",
		},
		{
			"spaced bracket arguments",
			"System.Collections.Generic.Dictionary`2[System.String, System.Int32]",
			"System.Collections.Generic.Dictionary`2[System.String,System.Int32]",
		},
		{
			"spaced nested arguments",
			"System.Collections.Generic.List`1[System.Collections.Generic.Dictionary`2[System.String, System.Int32]]",
			"System.Collections.Generic.List`1[System.Collections.Generic.Dictionary`2[System.String,System.Int32]]",
		},

		{"parameter", "T", "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.input)
			if err != nil {
				t.Fatalf("ParseName(%q): %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseName(%q) = %q, want %q", tt.input, got, tt.want)
			}

			// Canonical names are fixed points.
			again, err := ParseName(got.String())
			if err != nil {
				t.Fatalf("ParseName(%q): %v", got, err)
			}
			if again != got {
				t.Errorf("ParseName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestParseName_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"System.Collections.Generic.List`1[",
		"System.Collections.Generic.List`1[System.Int32",
		"System.Collections.Generic.List`1[[System.Int32, CoreLib]",
		"System.Collections.Generic.List`1[]x",
		"System.Int32,",
		"List`1[System.Int32]]",
		"System.Int32[,",
	}
	for _, input := range inputs {
		if _, err := ParseName(input); !errors.Is(err, ErrInvalidTypeName) {
			t.Errorf("ParseName(%q) error = %v, want ErrInvalidTypeName", input, err)
		}
	}
}

func TestParseTypeName_KeepsQualification(t *testing.T) {
	tn, err := ParseTypeName("System.Collections.Generic.List`1[[System.Int32, System.Private.CoreLib]], System.Private.CoreLib")
	if err != nil {
		t.Fatal(err)
	}
	if tn.Assembly != "System.Private.CoreLib" {
		t.Errorf("Assembly = %q, want System.Private.CoreLib", tn.Assembly)
	}
	if len(tn.Args) != 1 || tn.Args[0].Assembly != "System.Private.CoreLib" {
		t.Fatalf("Args = %+v, want one qualified argument", tn.Args)
	}
	want := "System.Collections.Generic.List`1[[System.Int32, System.Private.CoreLib]], System.Private.CoreLib"
	if tn.String() != want {
		t.Errorf("String = %q, want %q", tn.String(), want)
	}
	if got := tn.Strip().String(); got != "System.Collections.Generic.List`1[System.Int32]" {
		t.Errorf("Strip = %q", got)
	}
}

func TestParseTypeName_ArgumentCount(t *testing.T) {
	tests := []struct {
		input    string
		args     int
		assembly string
	}{
		{"System.Collections.Generic.Dictionary`2<System.String, System.Int32>", 2, ""},
		{"System.Collections.Generic.Dictionary`2[System.String, System.Int32]", 2, ""},
		{"System.Collections.Generic.List`1[System.Int32, System.Private.CoreLib, Version=8.0.0.0]", 1, "System.Private.CoreLib, Version=8.0.0.0"},
	}
	for _, tt := range tests {
		tn, err := ParseTypeName(tt.input)
		if err != nil {
			t.Errorf("ParseTypeName(%q): %v", tt.input, err)
			continue
		}
		if len(tn.Args) != tt.args {
			t.Errorf("ParseTypeName(%q) has %d arguments, want %d", tt.input, len(tn.Args), tt.args)
			continue
		}
		if tn.Args[0].Assembly != tt.assembly {
			t.Errorf("ParseTypeName(%q) first argument assembly = %q, want %q", tt.input, tn.Args[0].Assembly, tt.assembly)
		}
	}
}
