// Package store holds the in-memory collection of years and the hourly fee.
// It is the only entry point through which day data is added or removed.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/reti/internal/model"
)

// Store owns all years. It is not safe for concurrent use.
type Store struct {
	FeePerHour float64       `json:"fee_per_hour"`
	Years      []*model.Year `json:"years"`
}

func New() *Store {
	return &Store{Years: []*model.Year{}}
}

// Year returns the year y, or nil.
func (s *Store) Year(y uint16) *model.Year {
	for _, year := range s.Years {
		if year.Year == y {
			return year
		}
	}
	return nil
}

func (s *Store) yearOrCreate(y uint16) *model.Year {
	if year := s.Year(y); year != nil {
		return year
	}
	year := model.NewYear(y)
	s.Years = append(s.Years, year)
	return year
}

// Month returns the view over month m of year y.
func (s *Store) Month(y uint16, m time.Month) (model.Month, bool) {
	year := s.Year(y)
	if year == nil {
		return model.Month{}, false
	}
	return year.Month(m)
}

// Week returns the view over ISO week w of year y.
func (s *Store) Week(y uint16, w int) (model.Week, bool) {
	year := s.Year(y)
	if year == nil {
		return model.Week{}, false
	}
	return year.Week(w)
}

// Day returns the day recorded for y-m-d, or nil.
func (s *Store) Day(y uint16, m time.Month, d int) *model.Day {
	month, ok := s.Month(y, m)
	if !ok {
		return nil
	}
	for _, day := range month.Days() {
		if day.Date.Day == d {
			return day
		}
	}
	return nil
}

// AddPart merges a single part into the day of date, creating the day and
// its year when needed.
func (s *Store) AddPart(date model.Date, part model.Part) (model.Merge, error) {
	if !part.Valid() {
		return model.Merge{}, fmt.Errorf("%w: %s", model.ErrStopBeforeStart, part)
	}
	return s.AddDay(model.NewDay(date, part))
}

// AddDay merges all parts of day into the existing day of the same date, or
// inserts day as a new one. Parts overlapping existing ones are rejected.
func (s *Store) AddDay(day model.Day) (model.Merge, error) {
	for _, p := range day.Parts {
		if !p.Valid() {
			return model.Merge{}, fmt.Errorf("%w: %s", model.ErrStopBeforeStart, p)
		}
	}
	year := s.yearOrCreate(uint16(day.Date.Year))
	if existing := year.Day(day.Date.Month, day.Date.Day); existing != nil {
		return existing.Merge(day)
	}
	return insert(year, day), nil
}

// AddDayForce replaces the parts and comment of an existing day with those
// of day. A day without parts is refused so the force path never leaves an
// empty day behind. One open part is kept when it starts at or after every
// closed part, which lets a day opened by Start be written back unchanged.
func (s *Store) AddDayForce(day model.Day) (model.Merge, error) {
	if len(day.Parts) == 0 {
		return model.Merge{}, model.ErrNoParts
	}
	for _, p := range day.Parts {
		if !p.Valid() {
			return model.Merge{}, fmt.Errorf("%w: %s", model.ErrStopBeforeStart, p)
		}
	}
	year := s.yearOrCreate(uint16(day.Date.Year))
	if existing := year.Day(day.Date.Month, day.Date.Day); existing != nil {
		existing.Reset()
		return replace(existing, day), nil
	}
	fresh := model.NewDay(day.Date)
	m := replace(&fresh, day)
	m.Inserted = year.Insert(fresh)
	return m, nil
}

// replace merges the closed parts of day into the emptied target, then
// appends the first open part if no closed part ends after its start.
func replace(target *model.Day, day model.Day) model.Merge {
	var closed, open []model.Part
	for _, p := range day.Parts {
		if p.Open() {
			open = append(open, p)
		} else {
			closed = append(closed, p)
		}
	}

	var m model.Merge
	if len(closed) > 0 {
		c := day
		c.Parts = closed
		m, _ = target.Merge(c)
	} else if day.Comment != nil {
		target.SetComment(*day.Comment)
	}

	for i, p := range open {
		if i > 0 || blocked(target, p) {
			m.Rejected = append(m.Rejected, p)
			continue
		}
		target.Parts = append(target.Parts, p)
		m.Added = append(m.Added, p)
	}
	return m
}

// blocked reports whether any part of day conflicts with p.
func blocked(day *model.Day, p model.Part) bool {
	for _, q := range day.Parts {
		if conflict(q, p) {
			return true
		}
	}
	return false
}

// insert adds day as a new day of year, dropping parts that overlap earlier
// parts of the same incoming day.
func insert(year *model.Year, day model.Day) model.Merge {
	fresh := model.NewDay(day.Date)
	fresh.Comment = day.Comment
	var m model.Merge
	if len(day.Parts) > 0 {
		m, _ = fresh.Merge(day)
	}
	m.Inserted = year.Insert(fresh)
	return m
}

// RemoveDay deletes the day of date and reports whether one existed.
func (s *Store) RemoveDay(date model.Date) bool {
	year := s.Year(uint16(date.Year))
	if year == nil {
		return false
	}
	return year.Remove(date)
}

// ErrRunning is returned by Start while the day still has an open part.
var ErrRunning = errors.New("a part is still open")

// Start opens a part at start on date. Merging refuses open parts next to
// recorded ones, so Start accepts it as long as every recorded part ends no
// later than start; closing it with Stop then keeps the day free of overlaps.
func (s *Store) Start(date model.Date, start model.Clock, factor *float64) (model.Part, error) {
	part := model.OpenPart(start)
	part.Factor = factor
	year := s.yearOrCreate(uint16(date.Year))
	day := year.Day(date.Month, date.Day)
	if day == nil {
		insert(year, model.NewDay(date, part))
		return part, nil
	}
	for _, p := range day.Parts {
		if p.Open() {
			return model.Part{}, fmt.Errorf("%w: started %s on %s", ErrRunning, p.Start, date)
		}
		if *p.Stop > start {
			return model.Part{}, fmt.Errorf("part %s on %s ends after %s", p, date, start)
		}
	}
	day.Parts = append(day.Parts, part)
	return part, nil
}

// Stop closes the open part of date at stop.
func (s *Store) Stop(date model.Date, stop model.Clock) (model.Part, error) {
	day := s.Day(uint16(date.Year), date.Month, date.Day)
	if day == nil {
		return model.Part{}, fmt.Errorf("no day recorded for %s", date)
	}
	i := day.OpenPart()
	if i < 0 {
		return model.Part{}, fmt.Errorf("no open part on %s", date)
	}
	if stop < day.Parts[i].Start {
		return model.Part{}, fmt.Errorf("%w: %s-%s", model.ErrStopBeforeStart, day.Parts[i].Start, stop)
	}
	day.Parts[i].Stop = &stop
	return day.Parts[i], nil
}

// conflict reports whether two parts of one day cannot coexist. An open part
// may follow closed parts that end no later than its start.
func conflict(a, b model.Part) bool {
	switch {
	case a.Open() && b.Open():
		return true
	case a.Open():
		return *b.Stop > a.Start
	case b.Open():
		return *a.Stop > b.Start
	}
	return a.Intersects(b)
}

// Check verifies the invariants of a store decoded from outside: one year
// per number, one day per date, days filed under their own year, valid and
// non-overlapping parts.
func (s *Store) Check() error {
	years := map[uint16]bool{}
	for _, y := range s.Years {
		if y == nil {
			return errors.New("null year entry")
		}
		if years[y.Year] {
			return fmt.Errorf("year %d recorded twice", y.Year)
		}
		years[y.Year] = true

		dates := map[model.Date]bool{}
		for i := range y.Days {
			d := &y.Days[i]
			if uint16(d.Date.Year) != y.Year {
				return fmt.Errorf("day %s filed under year %d", d.Date, y.Year)
			}
			if dates[d.Date] {
				return fmt.Errorf("day %s recorded twice", d.Date)
			}
			dates[d.Date] = true
			for j, p := range d.Parts {
				if !p.Valid() {
					return fmt.Errorf("day %s: %w: %s", d.Date, model.ErrStopBeforeStart, p)
				}
				for _, q := range d.Parts[:j] {
					if conflict(q, p) {
						return fmt.Errorf("day %s: parts %s and %s overlap", d.Date, q, p)
					}
				}
			}
		}
	}
	return nil
}
