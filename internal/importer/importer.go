// Package importer feeds legacy text into a store line by line. A bad line is
// logged and counted, never fatal to the rest of the input.
package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/parser"
	"github.com/Tiliavir/reti/internal/store"
)

// Result counts what happened to each input line.
type Result struct {
	Imported  int // lines that added parts or a new day
	Unchanged int // lines fully covered by existing data
	Skipped   int // empty and comment-only lines
	Failed    int // lines that did not parse or could not be stored
	Rejected  int // parts dropped because they overlap existing ones
}

// Changed reports whether the store was modified.
func (r Result) Changed() bool {
	return r.Imported > 0
}

func (r Result) String() string {
	return fmt.Sprintf("imported %d, unchanged %d, skipped %d, failed %d, rejected parts %d",
		r.Imported, r.Unchanged, r.Skipped, r.Failed, r.Rejected)
}

// Importer merges parsed days into Store. With Force set each day replaces
// the existing day of the same date instead of being merged into it.
type Importer struct {
	Store  *store.Store
	Parser *parser.Parser
	Force  bool
	Log    *log.Logger
}

func New(s *store.Store, p *parser.Parser, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Discard()
	}
	return &Importer{Store: s, Parser: p, Log: logger.WithComponent(log.ComponentImport)}
}

// ImportFile imports every line of the file at path.
func (im *Importer) ImportFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("opening legacy file: %w", err)
	}
	defer f.Close()

	res, err := im.ImportReader(f)
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", path, err)
	}
	return res, nil
}

// ImportReader imports every line read from rd. Only a read error aborts.
func (im *Importer) ImportReader(rd io.Reader) (Result, error) {
	var res Result
	sc := bufio.NewScanner(rd)
	for n := 1; sc.Scan(); n++ {
		im.count(&res, n, sc.Text())
	}
	return res, sc.Err()
}

func (im *Importer) count(res *Result, n int, line string) {
	m, err := im.ImportLine(line)
	switch {
	case errors.Is(err, parser.ErrEmptyLine) || parser.IsSkip(err):
		res.Skipped++
		return
	case errors.Is(err, model.ErrNoParts):
		im.Log.Debug("line carries no parts for an existing day", log.FieldLine, n)
		res.Unchanged++
		return
	case err != nil:
		im.Log.Warn("ignoring line", log.FieldLine, n, log.FieldError, err)
		res.Failed++
		return
	}

	for _, p := range m.Rejected {
		im.Log.Warn("part overlaps recorded time", log.FieldLine, n, log.FieldPart, p.String())
	}
	res.Rejected += len(m.Rejected)
	if m.Changed() {
		res.Imported++
	} else {
		res.Unchanged++
	}
}

// ImportLine parses a single line and stores the resulting day.
func (im *Importer) ImportLine(line string) (model.Merge, error) {
	day, err := im.Parser.ParseLine(line)
	if err != nil {
		return model.Merge{}, err
	}
	if im.Force {
		return im.Store.AddDayForce(day)
	}
	return im.Store.AddDay(day)
}
