package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache manages saved indexes in .gneedle/index-cache/.
// The cache key is a hash of gneedle.yaml contents, the module name, the
// module kind and the target architecture, so an index is reused while the catalog is
// unchanged.
type Cache struct {
	// projectDir is the root directory containing gneedle.yaml.
	projectDir string
}

// NewCache creates a new cache scoped to the given project directory.
func NewCache(projectDir string) *Cache {
	return &Cache{projectDir: projectDir}
}

// CacheDir returns the path to the cache directory.
func (c *Cache) CacheDir() string {
	return filepath.Join(c.projectDir, ".gneedle", "index-cache")
}

// Path returns where the index for the given catalog and target is cached.
func (c *Cache) Path(configData []byte, module, kind, arch string) string {
	return filepath.Join(c.CacheDir(), "index-"+c.computeKey(configData, module, kind, arch)+".db")
}

// Lookup checks if a cached index exists for the given catalog.
// Returns the path to the index if found, or empty string if not cached.
func (c *Cache) Lookup(configData []byte, module, kind, arch string) string {
	path := c.Path(configData, module, kind, arch)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	if info.Size() == 0 {
		os.Remove(path)
		return ""
	}
	return path
}

// Clean removes all cached indexes.
func (c *Cache) Clean() error {
	return os.RemoveAll(c.CacheDir())
}

// computeKey generates a deterministic cache key from the catalog content and target.
func (c *Cache) computeKey(configData []byte, module, kind, arch string) string {
	h := sha256.New()
	h.Write(configData)
	h.Write([]byte("\x00"))
	h.Write([]byte(module))
	h.Write([]byte("\x00"))
	h.Write([]byte(kind))
	h.Write([]byte("\x00"))
	h.Write([]byte(arch))
	h.Write([]byte("\x00"))
	h.Write([]byte(indexFormatVersion))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// indexFormatVersion is bumped when the schema changes.
const indexFormatVersion = "v2"

// ConfigFingerprint returns the catalog file data for cache key computation.
// Trailing whitespace is ignored so trivial edits keep the cache.
func ConfigFingerprint(configPath string) ([]byte, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", configPath, err)
	}

	lines := strings.Split(string(data), "\n")
	var normalized strings.Builder
	for _, line := range lines {
		normalized.WriteString(strings.TrimRight(line, " \t\r"))
		normalized.WriteString("\n")
	}

	return []byte(strings.TrimRight(normalized.String(), "\n")), nil
}
