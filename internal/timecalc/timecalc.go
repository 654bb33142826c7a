// Package timecalc holds the duration formatting and calendar helpers shared
// by the report printer and the Outlook import.
package timecalc

import (
	"fmt"
	"time"
)

// FormatDuration formats d with minute precision, like "1h 40m" or "45m".
func FormatDuration(d time.Duration) string {
	minutes := int64(d / time.Minute)
	sign := ""
	if minutes < 0 {
		sign, minutes = "-", -minutes
	}
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	}
	return fmt.Sprintf("%s%dm", sign, m)
}

// Hours converts d to fractional hours, counting whole minutes only.
func Hours(d time.Duration) float64 {
	return float64(d/time.Minute) / 60
}

// FormatHours formats d as hours with two decimals, e.g. "7.50h".
func FormatHours(d time.Duration) string {
	return fmt.Sprintf("%.2fh", Hours(d))
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // ISO Sunday
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	return monday, EndOfDay(monday.AddDate(0, 0, 6))
}

// ISOWeekLabel returns a label like "2026-W09".
func ISOWeekLabel(year, w int) string {
	return fmt.Sprintf("%d-W%02d", year, w)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
