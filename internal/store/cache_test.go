package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCache_Key(t *testing.T) {
	c := NewCache(t.TempDir())
	data := []byte("assemblies: []")

	a := c.Path(data, "gneedle", "dll", "amd64")
	if a != c.Path(data, "gneedle", "dll", "amd64") {
		t.Error("cache path should be deterministic")
	}
	if !strings.HasPrefix(a, c.CacheDir()) || !strings.HasSuffix(a, ".db") {
		t.Errorf("Path = %q", a)
	}

	for _, other := range []string{
		c.Path([]byte("assemblies: [x]"), "gneedle", "dll", "amd64"),
		c.Path(data, "gneedle", "console", "amd64"),
		c.Path(data, "gneedle", "dll", "arm64"),
		c.Path(data, "Contoso.Generated", "dll", "amd64"),
	} {
		if other == a {
			t.Errorf("different inputs share cache path %q", a)
		}
	}
}

func TestCache_LookupAndClean(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)
	data := []byte("assemblies: []")

	if got := c.Lookup(data, "gneedle", "dll", "amd64"); got != "" {
		t.Fatalf("Lookup on empty cache = %q", got)
	}

	path := c.Path(data, "gneedle", "dll", "amd64")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	// Empty files are leftovers of interrupted writes.
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := c.Lookup(data, "gneedle", "dll", "amd64"); got != "" {
		t.Errorf("Lookup of empty file = %q, want miss", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("empty cache file should be removed")
	}

	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := c.Lookup(data, "gneedle", "dll", "amd64"); got != path {
		t.Errorf("Lookup = %q, want %q", got, path)
	}

	if err := c.Clean(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(c.CacheDir()); !os.IsNotExist(err) {
		t.Error("Clean should remove the cache directory")
	}
}

func TestConfigFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte("imports: [A]\nassemblies: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("imports: [A]   \r\nassemblies: []\n\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fa, err := ConfigFingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := ConfigFingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(fa) != string(fb) {
		t.Errorf("fingerprints differ: %q vs %q", fa, fb)
	}

	if _, err := ConfigFingerprint(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
