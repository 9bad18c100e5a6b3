package il

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/internal/platform"
	"github.com/funvibe/gneedle/internal/typesystem"
)

func testModule(t *testing.T) *Module {
	t.Helper()
	m, err := NewModuleWithParameters("test", Parameters{Kind: Dll, Architecture: platform.AMD64})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestParseModuleKind(t *testing.T) {
	for _, kind := range []ModuleKind{Dll, Console, Windows, NetModule} {
		got, err := ParseModuleKind(kind.String())
		if err != nil {
			t.Fatalf("ParseModuleKind(%q): %v", kind, err)
		}
		if got != kind {
			t.Errorf("ParseModuleKind(%q) = %v, want %v", kind, got, kind)
		}
	}
	if got, err := ParseModuleKind(" DLL "); err != nil || got != Dll {
		t.Errorf("ParseModuleKind is case-insensitive: got %v, %v", got, err)
	}

	_, err := ParseModuleKind("exe")
	var rangeErr *platform.OutOfRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error = %v, want OutOfRangeError", err)
	}
	if rangeErr.Setting != "module kind" || rangeErr.Value != "exe" {
		t.Errorf("OutOfRangeError = %+v", rangeErr)
	}
}

func TestNewModule(t *testing.T) {
	m, err := NewModule("lib", Console)
	if err != nil {
		t.Fatalf("NewModule: %v", err)
	}
	if m.Name() != "lib" || m.Kind() != Console {
		t.Errorf("module = %s %s", m.Name(), m.Kind())
	}
	if m.MVID() == uuid.Nil {
		t.Error("MVID should be set")
	}
	other, _ := NewModule("lib", Console)
	if other.MVID() == m.MVID() {
		t.Error("every module gets its own MVID")
	}

	if _, err := NewModule("lib", ModuleKind(42)); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := NewModuleWithParameters("lib", Parameters{Kind: Dll, Architecture: platform.Architecture(99)}); err == nil {
		t.Error("expected error for unknown architecture")
	}
}

func TestTypeReferenceFullName(t *testing.T) {
	m := testModule(t)
	outer, err := m.DefineType("Contoso", "Outer", "T")
	if err != nil {
		t.Fatal(err)
	}
	inner, err := m.DefineNestedType(outer, "Inner", "U")
	if err != nil {
		t.Fatal(err)
	}
	intRef, _ := m.DefineType("System", "Int32")
	stringRef, _ := m.DefineType("System", "String")

	if got, want := inner.FullName(), "Contoso.Outer`1/Inner`1"; got != want {
		t.Errorf("FullName = %q, want %q", got, want)
	}
	if inner.Namespace() != "" {
		t.Errorf("nested references carry no namespace, got %q", inner.Namespace())
	}
	params := inner.GenericParameters()
	if len(params) != 2 || params[0].Name() != "T" || params[1].Name() != "U" || params[1].Position() != 1 {
		t.Fatalf("parameters = %v", params)
	}
	if params[0].Owner() != inner {
		t.Error("inherited parameters belong to the nested reference")
	}

	inst, err := inner.MakeGenericInstance(intRef, stringRef)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := inst.FullName(), "Contoso.Outer`1/Inner`1<System.Int32,System.String>"; got != want {
		t.Errorf("FullName = %q, want %q", got, want)
	}
	if !inst.IsGenericInstance() || inner.IsGenericInstance() {
		t.Error("only instances are generic instances")
	}
	if got, want := outer.Open().FullName(), "Contoso.Outer`1<T>"; got != want {
		t.Errorf("Open = %q, want %q", got, want)
	}

	var shapeErr *typesystem.InvalidShapeError
	if _, err := intRef.MakeGenericInstance(stringRef); !errors.As(err, &shapeErr) {
		t.Errorf("non-generic MakeGenericInstance error = %v", err)
	}
	if _, err := inner.MakeGenericInstance(intRef); !errors.As(err, &shapeErr) {
		t.Errorf("arity mismatch error = %v", err)
	}
}

func TestImportReference(t *testing.T) {
	tests := []struct {
		name   string
		handle typesystem.Handle
		wantIL string
	}{
		{"plain", clr.Int32, "System.Int32"},
		{"definition", clr.Dictionary, "System.Collections.Generic.Dictionary`2"},
		{"instance", clr.List.MustMakeGeneric(clr.Int32), "System.Collections.Generic.List`1<System.Int32>"},
		{
			"definition argument",
			clr.List.MustMakeGeneric(clr.List),
			"System.Collections.Generic.List`1<System.Collections.Generic.List`1<T>>",
		},
		{"nested", clr.ListEnumerator, "System.Collections.Generic.List`1/Enumerator"},
		{"nested instance", clr.ListEnumerator.MustMakeGeneric(clr.String), "System.Collections.Generic.List`1/Enumerator<System.String>"},
		{"parameters only", clr.List.MustMakeGeneric(clr.List.Param(0)), "System.Collections.Generic.List`1"},
	}

	m := testModule(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := m.ImportReference(tt.handle)
			if err != nil {
				t.Fatal(err)
			}
			if ref.FullName() != tt.wantIL {
				t.Errorf("FullName = %q, want %q", ref.FullName(), tt.wantIL)
			}
		})
	}

	if _, err := m.ImportReference(nil); err == nil {
		t.Error("expected error for nil handle")
	}
}

func TestImportReference_SharesDefinitions(t *testing.T) {
	m := testModule(t)
	a, err := m.ImportReference(clr.List.MustMakeGeneric(clr.Int32))
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.ImportReference(clr.List.MustMakeGeneric(clr.String))
	if err != nil {
		t.Fatal(err)
	}
	if a.(*GenericInstanceType).ElementType() != b.(*GenericInstanceType).ElementType() {
		t.Error("instances of one definition should share its reference")
	}
}

func TestLookupAndRevision(t *testing.T) {
	m := testModule(t)
	if m.Revision() != 0 {
		t.Fatalf("Revision = %d, want 0", m.Revision())
	}

	if _, err := m.ImportReference(clr.Dictionary.MustMakeGeneric(clr.String, clr.Int32)); err != nil {
		t.Fatal(err)
	}
	rev := m.Revision()
	if rev != 1 {
		t.Errorf("Revision = %d, want 1", rev)
	}
	// Importing the same type again adds nothing.
	if _, err := m.ImportReference(clr.Dictionary.MustMakeGeneric(clr.String, clr.Int32)); err != nil {
		t.Fatal(err)
	}
	if m.Revision() != rev {
		t.Errorf("Revision = %d after re-import, want %d", m.Revision(), rev)
	}

	for _, name := range []string{
		"System.Collections.Generic.Dictionary`2[System.String,System.Int32]",
		"System.Collections.Generic.Dictionary`2<System.String,System.Int32>",
		"System.Collections.Generic.Dictionary`2<System.String, System.Int32>",
		"System.Collections.Generic.Dictionary`2[System.String, System.Int32]",
		"System.Collections.Generic.Dictionary`2[[System.String, System.Private.CoreLib],[System.Int32, System.Private.CoreLib]]",
	} {
		if _, ok := m.GetType(name); !ok {
			t.Errorf("GetType(%q) found nothing", name)
		}
	}
	if _, ok := m.GetType("System.Collections.Generic.Dictionary`2"); ok {
		t.Error("the definition was not imported")
	}
	if _, ok := m.GetType("List`1["); ok {
		t.Error("malformed names find nothing")
	}

	entries := m.Types()
	if len(entries) != 1 || entries[0].Name.String() != "System.Collections.Generic.Dictionary`2[System.String,System.Int32]" {
		t.Errorf("Types = %v", entries)
	}
}

func TestModuleConcurrentImport(t *testing.T) {
	m := testModule(t)
	handles := []*clr.Type{clr.Int32, clr.String, clr.List.MustMakeGeneric(clr.Int32), clr.Dictionary, clr.ListEnumerator}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, h := range handles {
				if _, err := m.ImportReference(h); err != nil {
					t.Error(err)
				}
			}
		}()
	}
	wg.Wait()

	if got := len(m.Types()); got != len(handles) {
		t.Errorf("Types = %d, want %d", got, len(handles))
	}
}
