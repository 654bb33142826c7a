package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/timecalc"
)

var stopComment string

var stopCmd = &cobra.Command{
	Use:   "stop [time|now]",
	Short: "Close the open part",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopComment, "comment", "", "Append a comment to the day")
}

func runStop(cmd *cobra.Command, args []string) error {
	now := time.Now()
	at := model.ClockOf(now)
	if len(args) == 1 {
		c, err := parseStopArg(args[0], now)
		if err != nil {
			return err
		}
		at = c
	}
	today := model.DateOf(now)

	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	date, open, ok := findOpen(sess.store)
	if !ok {
		fmt.Fprintln(os.Stderr, "No open part to stop.")
		os.Exit(1)
	}
	if err := stopOpen(sess.store, date, today, at); err != nil {
		if errors.Is(err, model.ErrStopBeforeStart) {
			return fmt.Errorf("cannot stop at %s: part started at %s", at, open.Start)
		}
		return err
	}
	if stopComment != "" {
		day := sess.store.Day(uint16(today.Year), today.Month, today.Day)
		if day != nil {
			appendComment(day, stopComment)
		}
	}
	sess.save(ctx)

	fmt.Printf("Stopped part started %s %s. Elapsed: %s\n",
		date, open.Start, timecalc.FormatDuration(elapsed(date, open.Start, today, at)))
	return nil
}

// elapsed returns the time between start on from and stop on to.
func elapsed(from model.Date, start model.Clock, to model.Date, stop model.Clock) time.Duration {
	days := to.Time().Sub(from.Time())
	return days + stop.Sub(start)
}

// appendComment adds c to the day's comment, separated by "; ".
func appendComment(day *model.Day, c string) {
	if day.Comment != nil && *day.Comment != "" {
		c = *day.Comment + "; " + c
	}
	day.SetComment(c)
}
