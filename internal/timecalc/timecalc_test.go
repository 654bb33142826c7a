package timecalc_test

import (
	"testing"
	"time"

	"github.com/Tiliavir/reti/internal/timecalc"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{45 * time.Second, "0m"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m"},
		{time.Hour, "1h 0m"},
		{time.Hour + time.Minute, "1h 1m"},
		{90 * time.Minute, "1h 30m"},
		{-30 * time.Minute, "-30m"},
	}
	for _, tt := range tests {
		if got := timecalc.FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestHours(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.00h"},
		{7*time.Hour + 30*time.Minute, "7.50h"},
		{3*time.Hour + 29*time.Minute + 59*time.Second, "3.48h"},
	}
	for _, tt := range tests {
		if got := timecalc.FormatHours(tt.d); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if h := timecalc.Hours(90 * time.Minute); h != 1.5 {
		t.Errorf("Hours(90m) = %v, want 1.5", h)
	}
}

func TestWeekRange(t *testing.T) {
	// 2026-02-27 is a Friday (week 9).
	fri := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	monday, sunday := timecalc.WeekRange(fri)

	wantMonday := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)
	wantSunday := time.Date(2026, 3, 1, 23, 59, 59, 0, time.UTC)

	if !monday.Equal(wantMonday) {
		t.Errorf("WeekRange monday = %v, want %v", monday, wantMonday)
	}
	if !sunday.Equal(wantSunday) {
		t.Errorf("WeekRange sunday = %v, want %v", sunday, wantSunday)
	}

	sun := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if monday2, _ := timecalc.WeekRange(sun); !monday2.Equal(wantMonday) {
		t.Errorf("WeekRange(sunday) monday = %v, want %v", monday2, wantMonday)
	}
}

func TestISOWeekLabel(t *testing.T) {
	if got := timecalc.ISOWeekLabel(2026, 9); got != "2026-W09" {
		t.Errorf("ISOWeekLabel = %q, want %q", got, "2026-W09")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	b := time.Date(2026, 2, 27, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	if !timecalc.SameDay(a, b) {
		t.Error("SameDay: expected same day for a and b")
	}
	if timecalc.SameDay(a, c) {
		t.Error("SameDay: expected different day for a and c")
	}
}
