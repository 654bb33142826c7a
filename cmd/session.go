package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Tiliavir/reti/internal/importer"
	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/parser"
	"github.com/Tiliavir/reti/internal/storage"
	"github.com/Tiliavir/reti/internal/store"
)

// session is a loaded store together with the backend it came from.
type session struct {
	backend storage.Backend
	store   *store.Store
}

// openSession opens the configured backend and loads the store.
func openSession(ctx context.Context) (*session, error) {
	kind, err := storage.ParseKind(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}
	path := cfg.Store.File
	if path == "" {
		if path, err = storage.DefaultPath(kind); err != nil {
			return nil, err
		}
	}
	backend, err := storage.Open(kind, path, storage.Options{Pretty: cfg.Store.Pretty, Log: logger})
	if err != nil {
		return nil, fmt.Errorf("storage error: %w", err)
	}
	s, err := backend.Load(ctx)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("storage error: %w", err)
	}
	return &session{backend: backend, store: s}, nil
}

// mustOpenSession exits with status 2 when the store cannot be loaded.
func mustOpenSession(ctx context.Context) *session {
	sess, err := openSession(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return sess
}

func (s *session) save(ctx context.Context) {
	if err := s.backend.Save(ctx, s.store); err != nil {
		fmt.Fprintln(os.Stderr, "storage error:", err)
		s.backend.Close()
		os.Exit(2)
	}
}

func (s *session) close() {
	if err := s.backend.Close(); err != nil {
		logger.Warn("closing storage", log.FieldError, err)
	}
}

func (s *session) importer() *importer.Importer {
	return importer.New(s.store, newParser(time.Now()), logger)
}

// newParser returns a parser in the configured mode with now's date as today.
func newParser(now time.Time) *parser.Parser {
	mode := parser.Tolerant
	if cfg.Parser.Strict {
		mode = parser.Strict
	}
	return parser.New(mode, model.DateOf(now))
}

// parseClockArg accepts "now" or a time in HH:MM or HHMM form.
func parseClockArg(arg string, now time.Time) (model.Clock, error) {
	if strings.EqualFold(arg, "now") {
		return model.ClockOf(now), nil
	}
	return parser.ParseTime(arg)
}

// parseStopArg is parseClockArg for a stop, which may also be 24:00.
func parseStopArg(arg string, now time.Time) (model.Clock, error) {
	if strings.EqualFold(arg, "now") {
		return model.ClockOf(now), nil
	}
	return parser.ParseStop(arg)
}

// parseDateArgs parses dates in any form the legacy format accepts. No
// arguments means today.
func parseDateArgs(p *parser.Parser, args []string) ([]model.Date, error) {
	if len(args) == 0 {
		return []model.Date{p.Today()}, nil
	}
	dates := make([]model.Date, 0, len(args))
	for _, a := range args {
		d, err := p.ParseDate(a)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// printMerge reports the outcome of adding parts to date.
func printMerge(date model.Date, m model.Merge) {
	for _, p := range m.Rejected {
		fmt.Fprintf(os.Stderr, "Warning: %s on %s overlaps recorded time, not added\n", p, date)
	}
	switch {
	case m.Inserted:
		fmt.Printf("Added %s with %d part(s)\n", date, len(m.Added))
	case len(m.Added) > 0:
		fmt.Printf("Added %d part(s) to %s\n", len(m.Added), date)
	default:
		fmt.Printf("Nothing changed on %s\n", date)
	}
}
