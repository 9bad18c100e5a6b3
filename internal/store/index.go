package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/funvibe/gneedle/internal/typesystem"
)

// Index is a saved module opened for reading.
type Index struct {
	db      *sql.DB
	cleanup func()
}

// ModuleInfo describes the module an index was saved from.
type ModuleInfo struct {
	MVID         uuid.UUID
	Name         string
	Kind         string
	Architecture string
}

// Entry is one saved type.
type Entry struct {
	Name            typesystem.Name
	ILName          string
	GenericInstance bool
}

// OpenIndex opens an index file written by a Writer.
func OpenIndex(ctx context.Context, path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Module returns the saved module identity.
func (x *Index) Module(ctx context.Context) (ModuleInfo, error) {
	var (
		info ModuleInfo
		mvid string
	)
	err := x.db.QueryRowContext(ctx, `SELECT mvid, name, kind, arch FROM modules LIMIT 1`).
		Scan(&mvid, &info.Name, &info.Kind, &info.Architecture)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("reading module: %w", err)
	}
	if info.MVID, err = uuid.Parse(mvid); err != nil {
		return ModuleInfo{}, fmt.Errorf("reading module: %w", err)
	}
	return info, nil
}

// Lookup finds a saved type by canonical name. Any rendering accepted by
// typesystem.ParseName may be given.
func (x *Index) Lookup(ctx context.Context, name string) (Entry, bool, error) {
	canonical, err := typesystem.ParseName(name)
	if err != nil {
		return Entry{}, false, err
	}
	e := Entry{Name: canonical}
	err = x.db.QueryRowContext(ctx,
		`SELECT il_name, generic_instance FROM types WHERE name = ?`, canonical.String()).
		Scan(&e.ILName, &e.GenericInstance)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("looking up %s: %w", canonical, err)
	}
	return e, true, nil
}

// Names returns the canonical names of all saved types in order.
func (x *Index) Names(ctx context.Context) ([]typesystem.Name, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT name FROM types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing types: %w", err)
	}
	defer rows.Close()

	var names []typesystem.Name
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		n, err := typesystem.ParseName(s)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (x *Index) Close() error {
	err := x.db.Close()
	if x.cleanup != nil {
		x.cleanup()
	}
	return err
}
