// Package watch re-reads a file whenever it is written and hands the new
// content to a callback.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Tiliavir/reti/internal/log"
)

// DefaultMinInterval limits reactions to one per second.
const DefaultMinInterval = time.Second

// Watcher calls OnChange with the file content after each write to Path.
// Writes arriving within MinInterval of the last reaction are coalesced into
// one call once the interval has passed.
type Watcher struct {
	Path        string
	OnChange    func(ctx context.Context, content []byte) error
	MinInterval time.Duration
	// Initial also calls OnChange once for the current content on start.
	Initial bool
	Log     *log.Logger
}

// Run watches until ctx is cancelled. Errors returned by OnChange are logged
// and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is nil")
	}
	logger := w.Log
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentWatch).With(log.FieldFile, w.Path)
	interval := w.MinInterval
	if interval <= 0 {
		interval = DefaultMinInterval
	}

	path, err := filepath.Abs(w.Path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", w.Path, err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watcher.Add: %w", err)
	}

	react := func() {
		b, err := readLoop(ctx, path)
		if err != nil {
			logger.Warn("cannot read file", log.FieldError, err)
			return
		}
		if err := w.OnChange(ctx, b); err != nil {
			logger.Error("change not applied", log.FieldError, err)
		}
	}

	var last time.Time
	if w.Initial {
		last = time.Now()
		react()
	}

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher.Events closed")
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("file changed", "op", event.Op.String())
			if wait := interval - time.Since(last); wait > 0 {
				if fire == nil {
					fire = time.After(wait)
				}
				continue
			}
			last = time.Now()
			react()

		case <-fire:
			fire = nil
			last = time.Now()
			react()

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher.Errors closed")
			}
			logger.Warn("watcher error", log.FieldError, err)
		}
	}
}

// readLoop reads the file, retrying while it is empty since a writer may
// have truncated it and not yet written the new content.
func readLoop(ctx context.Context, path string) ([]byte, error) {
	for i := 0; i < 100; i++ {
		b, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if len(b) > 0 {
			return b, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("readLoop: too many retries")
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	return b, nil
}
