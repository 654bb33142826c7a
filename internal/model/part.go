package model

import (
	"strconv"
	"time"
)

// DefaultFactor is the pay-rate multiplier of a part without an explicit factor.
const DefaultFactor = 1.0

// Part is one contiguous interval of work within a day.
// A nil Stop means the part is still open; a nil Factor means DefaultFactor.
type Part struct {
	Start  Clock    `json:"start"`
	Stop   *Clock   `json:"stop"`
	Factor *float64 `json:"factor"`
}

// NewPart returns a closed part without an explicit factor.
func NewPart(start, stop Clock) Part {
	return Part{Start: start, Stop: &stop}
}

// OpenPart returns a part that has been started but not stopped.
func OpenPart(start Clock) Part {
	return Part{Start: start}
}

// WithFactor returns a copy of p carrying factor f.
func (p Part) WithFactor(f float64) Part {
	p.Factor = &f
	return p
}

func (p Part) Open() bool {
	return p.Stop == nil
}

// Valid reports whether the part does not stop before it starts and lies
// within the day.
func (p Part) Valid() bool {
	if p.Start < 0 || p.Start >= EndOfDay {
		return false
	}
	return p.Stop == nil || (*p.Stop >= p.Start && *p.Stop <= EndOfDay)
}

// Rate returns the pay-rate multiplier, substituting DefaultFactor when unset.
func (p Part) Rate() float64 {
	if p.Factor == nil {
		return DefaultFactor
	}
	return *p.Factor
}

// Worked returns stop-start. ok is false for an open part, which contributes
// nothing to any total until it is closed.
func (p Part) Worked() (d time.Duration, ok bool) {
	if p.Stop == nil {
		return 0, false
	}
	return p.Stop.Sub(p.Start), true
}

// Earned returns the pay for the part at the given hourly fee.
func (p Part) Earned(fee float64) float64 {
	w, ok := p.Worked()
	if !ok {
		return 0
	}
	return w.Minutes() / 60 * p.Rate() * fee
}

// Intersects reports whether c overlaps p. Intervals are half-open, so
// touching boundaries do not overlap. An open part on either side is
// treated as overlapping.
func (p Part) Intersects(c Part) bool {
	if p.Stop == nil || c.Stop == nil {
		return true
	}
	if c.Start > p.Start {
		return *p.Stop > c.Start
	}
	return *c.Stop > p.Start
}

// Equal compares the values behind the optional fields.
func (p Part) Equal(o Part) bool {
	if p.Start != o.Start {
		return false
	}
	if (p.Stop == nil) != (o.Stop == nil) || (p.Stop != nil && *p.Stop != *o.Stop) {
		return false
	}
	if (p.Factor == nil) != (o.Factor == nil) || (p.Factor != nil && *p.Factor != *o.Factor) {
		return false
	}
	return true
}

// Legacy renders the part in the line format, e.g. "08:00-12:00-1.5".
// The factor is only written when set. Open parts render as "08:00-", or
// "08:00--1.5" with a factor.
func (p Part) Legacy() string {
	stop := ""
	if p.Stop != nil {
		stop = p.Stop.String()
	}
	s := p.Start.String() + "-" + stop
	if p.Factor != nil {
		s += "-" + strconv.FormatFloat(*p.Factor, 'f', -1, 64)
	}
	return s
}

func (p Part) String() string {
	return p.Legacy()
}
