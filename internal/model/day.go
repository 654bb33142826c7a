package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNoParts is returned when a merge carries no parts.
	ErrNoParts = errors.New("no parts to merge")
	// ErrDateMismatch is returned when merging days of different dates.
	ErrDateMismatch = errors.New("days have different dates")
	// ErrStopBeforeStart is returned for a part that stops before it starts.
	ErrStopBeforeStart = errors.New("part stops before it starts")
)

// Day holds all parts recorded for one calendar date. Parts are unordered
// and never overlap each other.
type Day struct {
	Date    Date    `json:"date"`
	Parts   []Part  `json:"parts"`
	Comment *string `json:"comment"`
}

// NewDay returns a day holding the given parts. Overlap is not checked.
func NewDay(date Date, parts ...Part) Day {
	if parts == nil {
		parts = []Part{}
	}
	return Day{Date: date, Parts: parts}
}

// SetComment sets the comment; an empty string clears it.
func (d *Day) SetComment(c string) {
	if c == "" {
		d.Comment = nil
		return
	}
	d.Comment = &c
}

// Worked sums the duration of all closed parts.
func (d *Day) Worked() time.Duration {
	var total time.Duration
	for _, p := range d.Parts {
		if w, ok := p.Worked(); ok {
			total += w
		}
	}
	return total
}

// Earned sums the pay of all closed parts at the given hourly fee.
func (d *Day) Earned(fee float64) float64 {
	var total float64
	for _, p := range d.Parts {
		total += p.Earned(fee)
	}
	return total
}

// Intersects reports whether part overlaps any part already in the day.
func (d *Day) Intersects(part Part) bool {
	for _, p := range d.Parts {
		if p.Intersects(part) {
			return true
		}
	}
	return false
}

// OpenPart returns the index of the first open part, or -1.
func (d *Day) OpenPart() int {
	for i, p := range d.Parts {
		if p.Open() {
			return i
		}
	}
	return -1
}

// Merge is the outcome of merging parts into a day.
type Merge struct {
	Added    []Part
	Rejected []Part
	// Inserted is set when the day did not exist before.
	Inserted bool
}

// Changed reports whether a day was inserted or at least one part was added.
func (m Merge) Changed() bool {
	return m.Inserted || len(m.Added) > 0
}

// Merge adds every part of other that does not overlap the day's current
// parts; overlapping parts are returned as rejected. The comment of other is
// adopted only if the day has none.
func (d *Day) Merge(other Day) (Merge, error) {
	var m Merge
	if len(other.Parts) == 0 {
		return m, ErrNoParts
	}
	if d.Date != other.Date {
		return m, fmt.Errorf("%w: %s and %s", ErrDateMismatch, d.Date, other.Date)
	}
	for _, p := range other.Parts {
		if d.Intersects(p) {
			m.Rejected = append(m.Rejected, p)
			continue
		}
		d.Parts = append(d.Parts, p)
		m.Added = append(m.Added, p)
	}
	if d.Comment == nil && other.Comment != nil {
		c := *other.Comment
		d.Comment = &c
	}
	return m, nil
}

// Reset drops all parts and the comment.
func (d *Day) Reset() {
	d.Parts = []Part{}
	d.Comment = nil
}

// SortedParts returns the parts ordered by start time.
func (d *Day) SortedParts() []Part {
	parts := make([]Part, len(d.Parts))
	copy(parts, d.Parts)
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Start < parts[j].Start })
	return parts
}

// Legacy renders the day as one line of the legacy text format.
func (d *Day) Legacy() string {
	var b strings.Builder
	b.WriteString(d.Date.String())
	b.WriteString("   ")
	parts := d.SortedParts()
	for i, p := range parts {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(p.Legacy())
	}
	if d.Comment != nil {
		b.WriteString("   # ")
		b.WriteString(*d.Comment)
	}
	return b.String()
}
