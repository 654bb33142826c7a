// Package storage persists a whole store snapshot. The JSON file backend is
// the default; SQLite keeps the same snapshot in tables.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/store"
)

// Kind names a storage backend.
type Kind string

const (
	JSON   Kind = "json"
	SQLite Kind = "sqlite"
)

func (k Kind) IsValid() bool {
	return k == JSON || k == SQLite
}

// ParseKind maps a config or flag value to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("unknown storage backend %q (want json or sqlite)", s)
	}
	return k, nil
}

// Backend loads and saves complete stores. Load of a location that holds no
// data yet returns an empty store. Save replaces everything stored before.
type Backend interface {
	Load(ctx context.Context) (*store.Store, error)
	Save(ctx context.Context, s *store.Store) error
	Close() error
}

// Options tune a backend.
type Options struct {
	// Pretty selects indented JSON output.
	Pretty bool
	Log    *log.Logger
}

// Open returns the backend of the given kind persisting at path.
func Open(kind Kind, path string, opts Options) (Backend, error) {
	if opts.Log == nil {
		opts.Log = log.Discard()
	}
	logger := opts.Log.WithComponent(log.ComponentStorage).With(log.FieldBackend, string(kind), log.FieldFile, path)

	switch kind {
	case JSON:
		return &JSONFile{Path: path, Pretty: opts.Pretty, log: logger}, nil
	case SQLite:
		return OpenSQLite(path, logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", kind)
	}
}

// BaseDir returns the root data directory (~/.reti).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".reti"), nil
}

// DefaultPath returns the default data file of kind inside BaseDir.
func DefaultPath(kind Kind) (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	if kind == SQLite {
		return filepath.Join(base, "times.db"), nil
	}
	return filepath.Join(base, "times.json"), nil
}
