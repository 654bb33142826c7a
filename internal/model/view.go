package model

import (
	"math"
	"sort"
	"time"
)

// view is a read-only selection of days, held as indices into a Year's
// arena. It is a snapshot of membership: days added to the year later are
// not part of it, and after a removal from the year it is stale and must be
// rebuilt.
type view struct {
	year *Year
	rev  uint64
	idx  []int
}

// Stale reports whether the owning year was mutated in a way that
// invalidated the view's indices.
func (v view) Stale() bool {
	return v.year == nil || v.year.rev != v.rev
}

// Days resolves the view's days in date order. A stale view has no days.
func (v view) Days() []*Day {
	if v.Stale() {
		return nil
	}
	days := make([]*Day, 0, len(v.idx))
	for _, i := range v.idx {
		days = append(days, &v.year.Days[i])
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// Year returns the number of the year the view was built from.
func (v view) Year() uint16 {
	if v.year == nil {
		return 0
	}
	return v.year.Year
}

// Len returns the number of recorded days in the view.
func (v view) Len() int {
	if v.Stale() {
		return 0
	}
	return len(v.idx)
}

func (v view) Worked() time.Duration {
	return sumWorked(v.Days())
}

func (v view) Earned(fee float64) float64 {
	return sumEarned(v.Days(), fee)
}

// AveragePerDay returns the worked time divided by the number of recorded days.
func (v view) AveragePerDay() time.Duration {
	n := v.Len()
	if n == 0 {
		return 0
	}
	return v.Worked() / time.Duration(n)
}

// Factors returns the per-factor worked-time breakdown of the view.
func (v view) Factors() []FactorShare {
	return Factors(v.Days())
}

// Month is the view over one calendar month of a Year.
type Month struct {
	view
	Month time.Month
}

// Name returns the English month name, e.g. "May".
func (m Month) Name() string {
	return m.Month.String()
}

// Week is the view over one ISO week of a Year.
type Week struct {
	view
	Number int
}

// FactorShare is the time worked at one factor, rounded to one decimal.
type FactorShare struct {
	Factor float64
	Worked time.Duration
}

// Factors buckets the worked time of all closed parts by factor rounded to
// one decimal, ordered by factor.
func Factors(days []*Day) []FactorShare {
	buckets := map[int64]time.Duration{}
	for _, d := range days {
		for _, p := range d.Parts {
			w, ok := p.Worked()
			if !ok {
				continue
			}
			buckets[int64(math.Round(p.Rate()*10))] += w
		}
	}
	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	shares := make([]FactorShare, 0, len(keys))
	for _, k := range keys {
		shares = append(shares, FactorShare{Factor: float64(k) / 10, Worked: buckets[k]})
	}
	return shares
}

func sumWorked(days []*Day) time.Duration {
	var total time.Duration
	for _, d := range days {
		total += d.Worked()
	}
	return total
}

func sumEarned(days []*Day, fee float64) float64 {
	var total float64
	for _, d := range days {
		total += d.Earned(fee)
	}
	return total
}
