package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
)

// JSONFile keeps the store as one JSON document.
type JSONFile struct {
	Path   string
	Pretty bool
	log    *log.Logger
}

// Load reads the file. A missing file yields an empty store. A file that
// cannot be decoded is moved aside to <path>.corrupt and an error returned.
func (f *JSONFile) Load(ctx context.Context) (*store.Store, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		f.logger().Debug("no data file yet, starting empty")
		return store.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", f.Path, err)
	}

	s, err := Decode(data)
	if err != nil {
		backupPath := f.Path + ".corrupt"
		_ = os.Rename(f.Path, backupPath)
		return nil, fmt.Errorf("corrupt data in %s (backed up to %s): %w", f.Path, backupPath, err)
	}
	f.logger().Debug("store loaded", "years", len(s.Years))
	return s, nil
}

// Save writes the store to a temp file and renames it over the old one.
func (f *JSONFile) Save(ctx context.Context, s *store.Store) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, s, f.Pretty); err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	f.logger().Debug("store saved", "bytes", buf.Len())
	return nil
}

func (f *JSONFile) Close() error { return nil }

func (f *JSONFile) logger() *log.Logger {
	if f.log == nil {
		f.log = log.Discard()
	}
	return f.log
}

// Encode writes s as JSON, indented when pretty is set.
func Encode(w io.Writer, s *store.Store, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(s)
}

// Decode parses a JSON snapshot and verifies its invariants.
func Decode(data []byte) (*store.Store, error) {
	var s store.Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	normalize(&s)
	if err := s.Check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalize replaces null collections by empty ones.
func normalize(s *store.Store) {
	if s.Years == nil {
		s.Years = []*model.Year{}
	}
	for _, y := range s.Years {
		if y == nil {
			continue
		}
		if y.Days == nil {
			y.Days = []model.Day{}
		}
		for i := range y.Days {
			if y.Days[i].Parts == nil {
				y.Days[i].Parts = []model.Part{}
			}
		}
	}
}
