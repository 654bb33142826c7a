package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
)

var startFactor float64

var startCmd = &cobra.Command{
	Use:   "start [time|now]",
	Short: "Open a part for today",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().Float64Var(&startFactor, "factor", 0, "Pay-rate factor of the part (default 1)")
}

func runStart(cmd *cobra.Command, args []string) error {
	now := time.Now()
	at := model.ClockOf(now)
	if len(args) == 1 {
		c, err := parseClockArg(args[0], now)
		if err != nil {
			return err
		}
		at = c
	}
	today := model.DateOf(now)

	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	// Close a part that is still running before opening the next one.
	if date, part, ok := findOpen(sess.store); ok {
		fmt.Fprintf(os.Stderr, "Warning: auto-stopping part started %s %s\n", date, part.Start)
		if err := stopOpen(sess.store, date, today, at); err != nil {
			return err
		}
	}

	var factor *float64
	if cmd.Flags().Changed("factor") {
		factor = &startFactor
	}
	if _, err := sess.store.Start(today, at, factor); err != nil {
		return err
	}
	sess.save(ctx)

	fmt.Printf("Started part on %s at %s\n", today, at)
	return nil
}

// stopOpen closes the open part of date at stop on day until. A part left
// open on an earlier day is closed at 24:00 and continued from 00:00 on until.
func stopOpen(s *store.Store, date, until model.Date, stop model.Clock) error {
	if date == until {
		_, err := s.Stop(date, stop)
		return err
	}
	first, err := s.Stop(date, model.EndOfDay)
	if err != nil {
		return err
	}
	second := model.NewPart(0, stop)
	second.Factor = first.Factor
	m, err := s.AddPart(until, second)
	if err != nil {
		return err
	}
	for _, p := range m.Rejected {
		fmt.Fprintf(os.Stderr, "Warning: %s on %s overlaps recorded time, not added\n", p, until)
	}
	return nil
}
