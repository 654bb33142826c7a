package model

import (
	"sort"
	"time"
)

// Year owns all days of one calendar year, at most one per date.
//
// Days is an arena: new days are appended, so indices handed out to Month
// and Week views stay valid until a day is removed.
type Year struct {
	Year uint16 `json:"year"`
	Days []Day  `json:"days"`

	// rev is bumped whenever indices into Days are invalidated.
	rev uint64
}

func NewYear(year uint16) *Year {
	return &Year{Year: year, Days: []Day{}}
}

func (y *Year) index(m time.Month, d int) int {
	for i := range y.Days {
		if y.Days[i].Date.Month == m && y.Days[i].Date.Day == d {
			return i
		}
	}
	return -1
}

// Day returns the day for month m and day d, or nil.
func (y *Year) Day(m time.Month, d int) *Day {
	if i := y.index(m, d); i >= 0 {
		return &y.Days[i]
	}
	return nil
}

// Insert adds day unless a day with the same date already exists.
func (y *Year) Insert(day Day) bool {
	if y.index(day.Date.Month, day.Date.Day) >= 0 {
		return false
	}
	if day.Parts == nil {
		day.Parts = []Part{}
	}
	y.Days = append(y.Days, day)
	return true
}

// Remove deletes the day with the given date and reports whether it existed.
// Views built before a removal are stale afterwards.
func (y *Year) Remove(date Date) bool {
	kept := y.Days[:0]
	for _, d := range y.Days {
		if d.Date != date {
			kept = append(kept, d)
		}
	}
	removed := len(kept) < len(y.Days)
	clear(y.Days[len(kept):])
	y.Days = kept
	if removed {
		y.rev++
	}
	return removed
}

func (y *Year) selectDays(keep func(Date) bool) view {
	v := view{year: y, rev: y.rev}
	for i := range y.Days {
		if keep(y.Days[i].Date) {
			v.idx = append(v.idx, i)
		}
	}
	return v
}

// Month returns the view over the days of month m; ok is false if there are none.
func (y *Year) Month(m time.Month) (Month, bool) {
	v := y.selectDays(func(d Date) bool { return d.Month == m })
	return Month{view: v, Month: m}, len(v.idx) > 0
}

// Week returns the view over the days of ISO week w; ok is false if there are none.
func (y *Year) Week(w int) (Week, bool) {
	v := y.selectDays(func(d Date) bool { return d.ISOWeek() == w })
	return Week{view: v, Number: w}, len(v.idx) > 0
}

// Months groups the year's days by calendar month, in month order.
func (y *Year) Months() []Month {
	seen := map[time.Month]bool{}
	for _, d := range y.Days {
		seen[d.Date.Month] = true
	}
	var months []Month
	for m := time.January; m <= time.December; m++ {
		if !seen[m] {
			continue
		}
		month, _ := y.Month(m)
		months = append(months, month)
	}
	return months
}

// Weeks groups the year's days by ISO week number, in week order.
func (y *Year) Weeks() []Week {
	seen := map[int]bool{}
	var numbers []int
	for _, d := range y.Days {
		w := d.Date.ISOWeek()
		if !seen[w] {
			seen[w] = true
			numbers = append(numbers, w)
		}
	}
	sort.Ints(numbers)
	weeks := make([]Week, 0, len(numbers))
	for _, n := range numbers {
		week, _ := y.Week(n)
		weeks = append(weeks, week)
	}
	return weeks
}

// SortedDays returns pointers to the year's days ordered by date.
func (y *Year) SortedDays() []*Day {
	days := make([]*Day, len(y.Days))
	for i := range y.Days {
		days[i] = &y.Days[i]
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

func (y *Year) Worked() time.Duration {
	return sumWorked(y.SortedDays())
}

func (y *Year) Earned(fee float64) float64 {
	return sumEarned(y.SortedDays(), fee)
}
