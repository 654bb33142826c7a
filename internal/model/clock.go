package model

import (
	"fmt"
	"time"
)

// Clock is a zone-naive time of day with minute precision, counted in
// minutes since midnight.
type Clock int

// EndOfDay is 24:00, the stop of a part that runs until midnight. NewClock
// never returns it and it is not a valid start.
const EndOfDay Clock = 24 * 60

// NewClock validates hour (0-23) and minute (0-59).
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range 0-23", hour)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("minute %d out of range 0-59", minute)
	}
	return Clock(hour*60 + minute), nil
}

// ClockOf truncates t to its hour and minute.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Sub returns the duration c-o.
func (c Clock) Sub(o Clock) time.Duration {
	return time.Duration(c-o) * time.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts exactly "HH:MM", including "24:00".
func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClock parses the canonical "HH:MM" form written by String.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("parsing time of day %q: want HH:MM", s)
	}
	digits := [4]byte{s[0], s[1], s[3], s[4]}
	for _, d := range digits {
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("parsing time of day %q: want HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h == 24 && m == 0 {
		return EndOfDay, nil
	}
	c, err := NewClock(h, m)
	if err != nil {
		return 0, fmt.Errorf("parsing time of day %q: %w", s, err)
	}
	return c, nil
}
