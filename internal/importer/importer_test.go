package importer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Tiliavir/reti/internal/importer"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/parser"
	"github.com/Tiliavir/reti/internal/store"
)

var today = model.Date{Year: 2016, Month: time.June, Day: 1}

const legacy = `# time sheet
2016-05-23 08:00-12:00 13:00-17:00 # first
2016-05-23 11:00-12:30
2016-05-24 08:00-12:00-1.5
garbage line

12:00-10:00
2016-05-23 # only a comment
2016-05-25 # holiday
`

func newImporter(s *store.Store) *importer.Importer {
	return importer.New(s, parser.New(parser.Tolerant, today), nil)
}

func TestImportReader(t *testing.T) {
	s := store.New()
	res, err := newImporter(s).ImportReader(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("ImportReader: %v", err)
	}
	want := importer.Result{Imported: 3, Unchanged: 2, Skipped: 2, Failed: 2, Rejected: 1}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if !res.Changed() {
		t.Error("Changed = false after importing days")
	}

	day := s.Day(2016, time.May, 23)
	if day == nil || len(day.Parts) != 2 || day.Worked() != 8*time.Hour {
		t.Fatalf("2016-05-23 = %+v", day)
	}
	if day.Comment == nil || *day.Comment != "first" {
		t.Errorf("comment = %v, want %q", day.Comment, "first")
	}
	holiday := s.Day(2016, time.May, 25)
	if holiday == nil || len(holiday.Parts) != 0 || holiday.Comment == nil {
		t.Errorf("holiday = %+v", holiday)
	}

	// A second pass over the same input changes nothing.
	again, err := newImporter(s).ImportReader(strings.NewReader(legacy))
	if err != nil {
		t.Fatal(err)
	}
	if again.Changed() {
		t.Errorf("re-import changed the store: %+v", again)
	}
}

func TestImportForce(t *testing.T) {
	s := store.New()
	if _, err := newImporter(s).ImportReader(strings.NewReader(legacy)); err != nil {
		t.Fatal(err)
	}

	im := newImporter(s)
	im.Force = true
	res, err := im.ImportReader(strings.NewReader("2016-05-23 09:00-10:00\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 {
		t.Errorf("result = %+v, want one imported line", res)
	}
	day := s.Day(2016, time.May, 23)
	if len(day.Parts) != 1 || day.Worked() != time.Hour {
		t.Errorf("parts after force = %v", day.Parts)
	}
	if day.Comment != nil {
		t.Errorf("comment = %q, want cleared", *day.Comment)
	}
}

func TestImportForceKeepsOpenPart(t *testing.T) {
	s := store.New()
	d := model.Date{Year: 2026, Month: time.October, Day: 17}
	eight, _ := model.NewClock(8, 0)
	noon, _ := model.NewClock(12, 0)
	one, _ := model.NewClock(13, 0)
	if _, err := s.AddPart(d, model.NewPart(eight, noon)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Start(d, one, nil); err != nil {
		t.Fatal(err)
	}
	line := s.Day(2026, time.October, 17).Legacy()

	im := importer.New(s, parser.New(parser.Tolerant, d), nil)
	im.Force = true
	res, err := im.ImportReader(strings.NewReader(line + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Rejected != 0 || res.Failed != 0 {
		t.Errorf("re-importing %q: %+v", line, res)
	}
	day := s.Day(2026, time.October, 17)
	if len(day.Parts) != 2 || day.OpenPart() < 0 {
		t.Errorf("parts after re-import = %v, want the closed and the open part", day.Parts)
	}
	if got := day.Legacy(); got != line {
		t.Errorf("day after re-import = %q, want %q", got, line)
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "times.txt")
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}
	s := store.New()
	res, err := newImporter(s).ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("imported = %d, want 3", res.Imported)
	}

	if _, err := newImporter(s).ImportFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestImportStrict(t *testing.T) {
	s := store.New()
	im := importer.New(s, parser.New(parser.Strict, today), nil)
	res, err := im.ImportReader(strings.NewReader("2016-05-23 08:00-12:00 --- 13:00-17:00\n2016-05-24 08:00-12:00\n"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Failed != 1 || res.Imported != 1 {
		t.Errorf("result = %+v, want 1 failed and 1 imported", res)
	}
}
