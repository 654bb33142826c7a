package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
)

func mustDate(t *testing.T, y int, m time.Month, d int) model.Date {
	t.Helper()
	dt, err := model.NewDate(y, m, d)
	if err != nil {
		t.Fatal(err)
	}
	return dt
}

func mustPart(t *testing.T, h1, m1, h2, m2 int) model.Part {
	t.Helper()
	start, err := model.NewClock(h1, m1)
	if err != nil {
		t.Fatal(err)
	}
	stop, err := model.NewClock(h2, m2)
	if err != nil {
		t.Fatal(err)
	}
	return model.NewPart(start, stop)
}

func TestAddPartCreatesYear(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)

	m, err := s.AddPart(d, mustPart(t, 8, 0, 12, 0))
	if err != nil {
		t.Fatalf("AddPart: %v", err)
	}
	if !m.Changed() || !m.Inserted {
		t.Errorf("AddPart on new date: changed = %v, inserted = %v", m.Changed(), m.Inserted)
	}
	if s.Year(2016) == nil {
		t.Fatal("year 2016 was not created")
	}

	m, err = s.AddPart(d, mustPart(t, 13, 0, 17, 0))
	if err != nil || !m.Changed() || m.Inserted {
		t.Errorf("AddPart merge: changed = %v, inserted = %v, err = %v", m.Changed(), m.Inserted, err)
	}
	m, err = s.AddPart(d, mustPart(t, 11, 0, 14, 0))
	if err != nil || m.Changed() || len(m.Rejected) != 1 {
		t.Errorf("AddPart overlap: changed = %v, rejected = %d, err = %v", m.Changed(), len(m.Rejected), err)
	}

	day := s.Day(2016, time.May, 23)
	if day == nil || len(day.Parts) != 2 {
		t.Fatalf("Day = %v, want 2 parts", day)
	}
	if day.Worked() != 8*time.Hour {
		t.Errorf("worked = %v, want 8h", day.Worked())
	}
}

func TestAddPartStopBeforeStart(t *testing.T) {
	s := store.New()
	_, err := s.AddPart(mustDate(t, 2016, 5, 23), mustPart(t, 12, 0, 8, 0))
	if !errors.Is(err, model.ErrStopBeforeStart) {
		t.Errorf("err = %v, want ErrStopBeforeStart", err)
	}
	if s.Year(2016) != nil {
		t.Error("rejected part must not create a year")
	}
}

func TestAddDay(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)

	incoming := model.NewDay(d, mustPart(t, 8, 0, 12, 0), mustPart(t, 13, 0, 17, 0))
	if m, err := s.AddDay(incoming); err != nil || !m.Changed() {
		t.Fatalf("AddDay: changed = %v, err = %v", m.Changed(), err)
	}
	if m, err := s.AddDay(incoming); err != nil || m.Changed() {
		t.Errorf("re-adding the same day: changed = %v, err = %v", m.Changed(), err)
	}
	if _, err := s.AddDay(model.NewDay(d)); !errors.Is(err, model.ErrNoParts) {
		t.Errorf("AddDay without parts onto existing day: err = %v", err)
	}

	// Overlapping parts within one new day keep only the first.
	other := model.NewDay(mustDate(t, 2016, 5, 24), mustPart(t, 8, 0, 12, 0), mustPart(t, 9, 0, 10, 0))
	m, err := s.AddDay(other)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Added) != 1 || len(m.Rejected) != 1 {
		t.Errorf("added = %d, rejected = %d; want 1, 1", len(m.Added), len(m.Rejected))
	}
}

func TestAddDayForce(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)
	first := model.NewDay(d, mustPart(t, 8, 0, 12, 0))
	first.SetComment("old")
	if _, err := s.AddDay(first); err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddDayForce(model.NewDay(d)); !errors.Is(err, model.ErrNoParts) {
		t.Errorf("AddDayForce without parts: err = %v, want ErrNoParts", err)
	}

	replacement := model.NewDay(d, mustPart(t, 9, 0, 10, 0))
	m, err := s.AddDayForce(replacement)
	if err != nil || !m.Changed() {
		t.Fatalf("AddDayForce: changed = %v, err = %v", m.Changed(), err)
	}
	day := s.Day(2016, time.May, 23)
	if len(day.Parts) != 1 || day.Parts[0].Start != mustPart(t, 9, 0, 10, 0).Start {
		t.Errorf("parts after force = %v", day.Parts)
	}
	if day.Comment != nil {
		t.Errorf("comment = %q, want cleared", *day.Comment)
	}

	// New year through the force path.
	if m, err := s.AddDayForce(model.NewDay(mustDate(t, 2017, 1, 2), mustPart(t, 9, 0, 10, 0))); err != nil || !m.Inserted {
		t.Errorf("AddDayForce new year: inserted = %v, err = %v", m.Inserted, err)
	}
	if s.Year(2017) == nil {
		t.Error("year 2017 was not created")
	}
}

func TestRemoveDay(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)
	if s.RemoveDay(d) {
		t.Error("RemoveDay on empty store reported a removal")
	}
	if _, err := s.AddPart(d, mustPart(t, 8, 0, 12, 0)); err != nil {
		t.Fatal(err)
	}
	if !s.RemoveDay(d) {
		t.Error("RemoveDay did not remove the day")
	}
	if s.Day(2016, time.May, 23) != nil {
		t.Error("day still present after removal")
	}
	if s.Year(2016) == nil {
		t.Error("year must not be deleted with its last day")
	}
}

func TestLookups(t *testing.T) {
	s := store.New()
	for _, d := range []model.Date{
		mustDate(t, 2016, 5, 23),
		mustDate(t, 2016, 5, 24),
		mustDate(t, 2016, 6, 1),
	} {
		if _, err := s.AddPart(d, mustPart(t, 8, 0, 10, 0)); err != nil {
			t.Fatal(err)
		}
	}

	if _, ok := s.Month(2015, time.May); ok {
		t.Error("Month of missing year should not be found")
	}
	may, ok := s.Month(2016, time.May)
	if !ok || may.Len() != 2 {
		t.Errorf("May: ok = %v, len = %d", ok, may.Len())
	}
	week, ok := s.Week(2016, 21)
	if !ok || week.Len() != 2 {
		t.Errorf("week 21: ok = %v, len = %d", ok, week.Len())
	}
	if _, ok := s.Week(2016, 30); ok {
		t.Error("week 30 should not be found")
	}
	if s.Day(2016, time.June, 2) != nil {
		t.Error("unexpected day 2016-06-02")
	}
}

func TestStop(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)
	start, _ := model.NewClock(9, 0)
	if _, err := s.AddPart(d, model.OpenPart(start)); err != nil {
		t.Fatal(err)
	}

	// An open part blocks further additions.
	if m, _ := s.AddPart(d, mustPart(t, 13, 0, 14, 0)); m.Changed() {
		t.Error("part added next to an open part")
	}

	early, _ := model.NewClock(8, 0)
	if _, err := s.Stop(d, early); !errors.Is(err, model.ErrStopBeforeStart) {
		t.Errorf("Stop before start: err = %v", err)
	}
	stop, _ := model.NewClock(12, 15)
	p, err := s.Stop(d, stop)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if w, _ := p.Worked(); w != 3*time.Hour+15*time.Minute {
		t.Errorf("worked = %v", w)
	}
	if _, err := s.Stop(d, stop); err == nil {
		t.Error("second Stop should fail without an open part")
	}
}

func TestCheck(t *testing.T) {
	s := store.New()
	if _, err := s.AddPart(mustDate(t, 2016, 5, 23), mustPart(t, 8, 0, 12, 0)); err != nil {
		t.Fatal(err)
	}
	if err := s.Check(); err != nil {
		t.Fatalf("Check on valid store: %v", err)
	}

	y := s.Year(2016)
	y.Days[0].Parts = append(y.Days[0].Parts, mustPart(t, 11, 0, 13, 0))
	if err := s.Check(); err == nil {
		t.Error("Check should report overlapping parts")
	}

	s = store.New()
	s.Years = append(s.Years, model.NewYear(2016), model.NewYear(2016))
	if err := s.Check(); err == nil {
		t.Error("Check should report a duplicated year")
	}
}

func TestStart(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2016, 5, 23)
	nine, _ := model.NewClock(9, 0)
	if _, err := s.Start(d, nine, nil); err != nil {
		t.Fatalf("Start on empty day: %v", err)
	}
	if _, err := s.Start(d, nine, nil); !errors.Is(err, store.ErrRunning) {
		t.Errorf("second Start: err = %v, want ErrRunning", err)
	}
	noon, _ := model.NewClock(12, 0)
	if _, err := s.Stop(d, noon); err != nil {
		t.Fatal(err)
	}

	eleven, _ := model.NewClock(11, 0)
	if _, err := s.Start(d, eleven, nil); err == nil {
		t.Error("Start inside recorded time should fail")
	}
	half := 0.5
	p, err := s.Start(d, noon, &half)
	if err != nil {
		t.Fatalf("Start at the end of recorded time: %v", err)
	}
	if !p.Open() || p.Rate() != 0.5 {
		t.Errorf("started part = %s", p)
	}
	if err := s.Check(); err != nil {
		t.Errorf("Check after Start: %v", err)
	}
}

func TestAddDayForceKeepsTrailingOpenPart(t *testing.T) {
	s := store.New()
	d := mustDate(t, 2026, 10, 17)
	if _, err := s.AddPart(d, mustPart(t, 8, 0, 12, 0)); err != nil {
		t.Fatal(err)
	}
	one, _ := model.NewClock(13, 0)
	if _, err := s.Start(d, one, nil); err != nil {
		t.Fatal(err)
	}
	written := *s.Day(2026, time.October, 17)

	m, err := s.AddDayForce(written)
	if err != nil {
		t.Fatalf("AddDayForce: %v", err)
	}
	if len(m.Rejected) != 0 || len(m.Added) != 2 {
		t.Errorf("added = %d, rejected = %d; want 2, 0", len(m.Added), len(m.Rejected))
	}
	day := s.Day(2026, time.October, 17)
	if len(day.Parts) != 2 || day.OpenPart() < 0 {
		t.Fatalf("parts = %v, want the closed part and the open one", day.Parts)
	}
	if err := s.Check(); err != nil {
		t.Errorf("Check: %v", err)
	}

	// An open part before a closed one, or a second open part, is refused.
	early, _ := model.NewClock(7, 0)
	late, _ := model.NewClock(18, 0)
	forced := model.NewDay(d, mustPart(t, 8, 0, 12, 0), model.OpenPart(early), model.OpenPart(late))
	m, err = s.AddDayForce(forced)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Added) != 1 || len(m.Rejected) != 2 {
		t.Errorf("added = %d, rejected = %d; want 1, 2", len(m.Added), len(m.Rejected))
	}

	// Same rule for a day that does not exist yet.
	next := mustDate(t, 2026, 10, 18)
	m, err = s.AddDayForce(model.NewDay(next, mustPart(t, 8, 0, 12, 0), model.OpenPart(one)))
	if err != nil || !m.Inserted || len(m.Added) != 2 {
		t.Errorf("new day: inserted = %v, added = %d, err = %v", m.Inserted, len(m.Added), err)
	}
}
