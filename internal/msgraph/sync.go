package msgraph

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
	"github.com/Tiliavir/reti/internal/timecalc"
)

// ErrCrossesMidnight is returned for events that do not fit into one day.
var ErrCrossesMidnight = errors.New("event crosses midnight")

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported  int
	Skipped   int // filtered events: cancelled, all-day, private, free, no times
	Conflicts int // events overlapping recorded time
	Errors    int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// Factor is set on every imported part; zero leaves it unset.
	Factor float64
	// Timezone is the IANA zone event times are interpreted in; "" means local.
	Timezone string
	DryRun   bool
	// Out receives one progress line per event. Nil discards them.
	Out io.Writer
	Log *log.Logger
}

// parseGraphTime parses a Graph API dateTime string in loc.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone
// suffix when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// location resolves an IANA name; "" and unknown names fall back to local.
func location(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	if l, err := time.LoadLocation(tz); err == nil {
		return l
	}
	return time.Local
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private":
		return true
	case event.ShowAs == "free":
		return true
	case event.Start.DateTime == "" || event.End.DateTime == "":
		return true
	}
	return false
}

// EventPart converts an event into a part on its calendar day in timezone.
// factor is set on the part unless it is zero.
func EventPart(event CalendarEvent, timezone string, factor float64) (model.Date, model.Part, error) {
	loc := location(timezone)
	start, err := parseGraphTime(event.Start.DateTime, loc)
	if err != nil {
		return model.Date{}, model.Part{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, loc)
	if err != nil {
		return model.Date{}, model.Part{}, fmt.Errorf("parsing end time: %w", err)
	}
	if end.Before(start) {
		return model.Date{}, model.Part{}, fmt.Errorf("%w: %s", model.ErrStopBeforeStart, event.Subject)
	}
	stop := model.ClockOf(end)
	if !timecalc.SameDay(start, end) {
		// An event ending at the following midnight still fits its day.
		if !end.Equal(timecalc.StartOfDay(start).AddDate(0, 0, 1)) {
			return model.Date{}, model.Part{}, ErrCrossesMidnight
		}
		stop = model.EndOfDay
	}

	part := model.NewPart(model.ClockOf(start), stop)
	if factor != 0 {
		part = part.WithFactor(factor)
	}
	return model.DateOf(start), part, nil
}

// SyncEvents merges the events into s as parts. Events overlapping recorded
// time are counted as conflicts, which makes a repeated sync a no-op. With
// DryRun set s is left untouched and the outcome is only reported.
func SyncEvents(s *store.Store, events []CalendarEvent, opts SyncOptions) SyncResult {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Log
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentOutlook)

	var result SyncResult
	pending := map[model.Date][]model.Part{}

	for _, event := range events {
		if shouldSkip(event) {
			result.Skipped++
			continue
		}

		date, part, err := EventPart(event, opts.Timezone, opts.Factor)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			logger.Warn("cannot map event", log.FieldEvent, event.ID, log.FieldError, err)
			result.Errors++
			continue
		}
		w, _ := part.Worked()
		label := fmt.Sprintf("%s %s %s (%s)", date, part.Start, event.Subject, timecalc.FormatDuration(w))

		if opts.DryRun {
			if conflicts(s, pending[date], date, part) {
				fmt.Fprintf(out, "  - Conflict: %s (overlaps recorded time)\n", label)
				result.Conflicts++
				continue
			}
			pending[date] = append(pending[date], part)
			fmt.Fprintf(out, "  ✓ Would import: %s\n", label)
			result.Imported++
			continue
		}

		m, err := s.AddPart(date, part)
		if err != nil {
			fmt.Fprintf(out, "  ! Error saving %q: %v\n", event.Subject, err)
			logger.Warn("cannot record event", log.FieldEvent, event.ID, log.FieldError, err)
			result.Errors++
			continue
		}
		if !m.Changed() {
			fmt.Fprintf(out, "  - Conflict: %s (overlaps recorded time)\n", label)
			logger.Debug("event overlaps recorded time", log.FieldEvent, event.ID, log.FieldDate, date.String(), log.FieldPart, part.String())
			result.Conflicts++
			continue
		}
		fmt.Fprintf(out, "  ✓ Imported: %s\n", label)
		result.Imported++
	}
	return result
}

func conflicts(s *store.Store, pending []model.Part, date model.Date, part model.Part) bool {
	if day := s.Day(uint16(date.Year), date.Month, date.Day); day != nil && day.Intersects(part) {
		return true
	}
	for _, p := range pending {
		if p.Intersects(part) {
			return true
		}
	}
	return false
}
