package needle_test

import (
	"testing"

	"github.com/funvibe/gneedle/internal/clr"
	"github.com/funvibe/gneedle/pkg/needle"
)

func TestPublicAPI(t *testing.T) {
	typ, err := needle.Parse("Dictionary<TKey, List<int>>")
	if err != nil {
		t.Fatal(err)
	}
	name, err := needle.NameOf(typ)
	if err != nil {
		t.Fatal(err)
	}
	want := "System.Collections.Generic.Dictionary`2[TKey,System.Collections.Generic.List`1[System.Int32]]"
	if name.String() != want {
		t.Errorf("NameOf = %q, want %q", name, want)
	}

	parsed, err := needle.ParseName("System.Collections.Generic.Dictionary`2<TKey,System.Collections.Generic.List`1<System.Int32>>")
	if err != nil {
		t.Fatal(err)
	}
	if parsed != name {
		t.Errorf("ParseName = %q, want %q", parsed, name)
	}

	byHandle, err := needle.NameOfHandle(clr.List.MustMakeGeneric(clr.Int32))
	if err != nil {
		t.Fatal(err)
	}
	if byHandle.String() != "System.Collections.Generic.List`1[System.Int32]" {
		t.Errorf("NameOfHandle = %q", byHandle)
	}

	if got := needle.Combine(needle.ConstraintClass, needle.ConstraintNew); got != needle.ConstraintClass.Attributes()|needle.ConstraintNew.Attributes() {
		t.Errorf("Combine = %s", got)
	}
	if needle.DefaultCatalog() == nil {
		t.Error("DefaultCatalog returned nil")
	}
}
