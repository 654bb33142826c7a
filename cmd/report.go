package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/report"
	"github.com/Tiliavir/reti/internal/timecalc"
)

var (
	reportYear   int
	reportWeek   int
	reportMonth  int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show worked time per factor for a week or month",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVarP(&reportYear, "year", "y", 0, "Year (default this year)")
	reportCmd.Flags().IntVar(&reportWeek, "week", 0, "ISO week number (default this week)")
	reportCmd.Flags().IntVarP(&reportMonth, "month", "m", 0, "Report a month instead of a week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
	reportCmd.MarkFlagsMutuallyExclusive("week", "month")
}

func runReport(cmd *cobra.Command, args []string) error {
	now := time.Now()
	year := reportYear
	if year == 0 {
		year = now.Year()
	}

	sess := mustOpenSession(context.Background())
	defer sess.close()

	var (
		label string
		days  []*model.Day
	)
	if reportMonth != 0 {
		if reportMonth < 1 || reportMonth > 12 {
			return fmt.Errorf("invalid month %d", reportMonth)
		}
		label = fmt.Sprintf("%d-%02d", year, reportMonth)
		if m, ok := sess.store.Month(uint16(year), time.Month(reportMonth)); ok {
			days = m.Days()
		}
	} else {
		week := reportWeek
		if week == 0 {
			_, week = now.ISOWeek()
		}
		label = timecalc.ISOWeekLabel(year, week)
		if w, ok := sess.store.Week(uint16(year), week); ok {
			days = w.Days()
		}
	}

	return report.Summarize(label, days, sess.store.FeePerHour).Write(os.Stdout, reportFormat)
}
