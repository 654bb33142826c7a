package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
	"github.com/Tiliavir/reti/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the open part and today's total",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()
	today := model.DateOf(now)

	sess := mustOpenSession(context.Background())
	defer sess.close()

	if date, open, ok := findOpen(sess.store); ok {
		fmt.Println("Running:")
		fmt.Printf("  Since: %s %s\n", date, open.Start)
		fmt.Printf("  Factor: %.1f\n", open.Rate())
		fmt.Printf("  Elapsed: %s\n", timecalc.FormatDuration(elapsed(date, open.Start, today, model.ClockOf(now))))
	} else {
		fmt.Println("No open part.")
	}

	var worked time.Duration
	var earned float64
	if day := sess.store.Day(uint16(today.Year), today.Month, today.Day); day != nil {
		worked, earned = day.Worked(), day.Earned(sess.store.FeePerHour)
	}
	fmt.Printf("Today: %s logged, %.2f earned.\n", timecalc.FormatDuration(worked), earned)
	return nil
}

// findOpen returns the latest day holding an open part.
func findOpen(s *store.Store) (model.Date, model.Part, bool) {
	var (
		date  model.Date
		part  model.Part
		found bool
	)
	for _, y := range s.Years {
		for _, d := range y.SortedDays() {
			if i := d.OpenPart(); i >= 0 && (!found || date.Before(d.Date)) {
				date, part, found = d.Date, d.Parts[i], true
			}
		}
	}
	return date, part, found
}
