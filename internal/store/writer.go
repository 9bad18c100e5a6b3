// Package store saves the type table of an IL module as a sqlite index and
// opens saved indexes for lookup by canonical name.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/funvibe/gneedle/internal/config"
	"github.com/funvibe/gneedle/internal/il"
)

const driverName = "sqlite"

// ErrDirty is returned when opening a module that has not been saved.
var ErrDirty = errors.New(config.DirtyModuleOperation)

// State tells whether the saved snapshot matches the module.
type State int

const (
	// Fresh means the last save holds every type of the module.
	Fresh State = iota
	// Dirty means the module was never saved or changed since.
	Dirty
)

func (s State) String() string {
	if s == Fresh {
		return "fresh"
	}
	return "dirty"
}

const schema = `
CREATE TABLE modules (
	mvid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	arch TEXT NOT NULL
);
CREATE TABLE types (
	mvid             TEXT NOT NULL REFERENCES modules(mvid),
	name             TEXT NOT NULL,
	il_name          TEXT NOT NULL,
	generic_instance INTEGER NOT NULL,
	PRIMARY KEY (mvid, name)
);
`

// Writer saves a module either to a file or, when created with
// NewMemoryWriter, to an in-memory buffer.
type Writer struct {
	module *il.Module
	path   string

	mu            sync.Mutex
	saved         bool
	savedRevision uint64
	buffer        []byte
}

// NewWriter saves to path, or to the default index file when path is empty.
func NewWriter(m *il.Module, path string) *Writer {
	if path == "" {
		path = config.DefaultIndexFile
	}
	return &Writer{module: m, path: path}
}

// NewMemoryWriter keeps the saved index in memory.
func NewMemoryWriter(m *il.Module) *Writer {
	return &Writer{module: m}
}

func (w *Writer) Module() *il.Module { return w.module }

// Path is the default save location, empty for memory writers.
func (w *Writer) Path() string { return w.path }

// State is Dirty until the first save and again whenever the module gains
// types after it.
func (w *Writer) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state()
}

func (w *Writer) state() State {
	if !w.saved || w.module.Revision() != w.savedRevision {
		return Dirty
	}
	return Fresh
}

// Save writes the module to the default location and marks it fresh.
func (w *Writer) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	revision := w.module.Revision()
	if w.path == "" {
		data, err := w.bytes(ctx)
		if err != nil {
			return err
		}
		w.buffer = data
	} else if err := writeIndex(ctx, w.module, w.path); err != nil {
		return err
	}
	w.saved = true
	w.savedRevision = revision
	return nil
}

// SaveTo writes the module to path. It does not change the state.
func (w *Writer) SaveTo(ctx context.Context, path string) error {
	return writeIndex(ctx, w.module, path)
}

// Bytes returns the module's index as a sqlite database image.
func (w *Writer) Bytes(ctx context.Context) ([]byte, error) {
	return w.bytes(ctx)
}

func (w *Writer) bytes(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "gneedle-index-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, config.DefaultIndexFile)
	if err := writeIndex(ctx, w.module, path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return data, nil
}

// Open opens the last saved index. It fails with ErrDirty when nothing
// has been saved.
func (w *Writer) Open(ctx context.Context) (*Index, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.saved {
		return nil, ErrDirty
	}
	if w.path != "" {
		return OpenIndex(ctx, w.path)
	}
	if len(w.buffer) == 0 {
		return nil, ErrDirty
	}

	dir, err := os.MkdirTemp("", "gneedle-index-")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	path := filepath.Join(dir, config.DefaultIndexFile)
	if err := os.WriteFile(path, w.buffer, 0o644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing index: %w", err)
	}
	idx, err := OpenIndex(ctx, path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	idx.cleanup = func() { os.RemoveAll(dir) }
	return idx, nil
}

// writeIndex replaces the file at path with a snapshot of m.
func writeIndex(ctx context.Context, m *il.Module, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing index %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating index dir: %w", err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", path, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	mvid := m.MVID().String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO modules (mvid, name, kind, arch) VALUES (?, ?, ?, ?)`,
		mvid, m.Name(), m.Kind().String(), m.Architecture().String()); err != nil {
		return fmt.Errorf("writing module: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO types (mvid, name, il_name, generic_instance) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range m.Types() {
		if _, err := stmt.ExecContext(ctx, mvid, e.Name.String(), e.Reference.FullName(), e.Reference.IsGenericInstance()); err != nil {
			return fmt.Errorf("writing type %s: %w", e.Name, err)
		}
	}
	return tx.Commit()
}
