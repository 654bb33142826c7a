package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/report"
)

var (
	showWorked  bool
	showDays    bool
	showParts   bool
	showVerbose bool
	showYear    int
	showMonth   int
	showByWeek  bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recorded time by year, month, week or day",
}

var showYearCmd = &cobra.Command{
	Use:   "year [year]",
	Short: "Show a year month by month (default this year)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShowYear,
}

var showMonthCmd = &cobra.Command{
	Use:   "month [month]",
	Short: "Show a month (default this month)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShowMonth,
}

var showWeekCmd = &cobra.Command{
	Use:   "week [week]",
	Short: "Show an ISO week (default this week)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShowWeek,
}

var showDayCmd = &cobra.Command{
	Use:   "day [date...]",
	Short: "Show days (default today)",
	RunE:  runShowDay,
}

func init() {
	pf := showCmd.PersistentFlags()
	pf.BoolVarP(&showWorked, "worked", "w", true, "Show worked time and totals")
	pf.BoolVarP(&showDays, "days", "d", false, "List the days")
	pf.BoolVarP(&showParts, "parts", "p", false, "List the parts of each day")
	pf.BoolVarP(&showVerbose, "verbose", "v", false, "Show weekdays, factor breakdown and earnings")
	showMonthCmd.Flags().IntVarP(&showYear, "year", "y", 0, "Year (default this year)")
	showWeekCmd.Flags().IntVarP(&showYear, "year", "y", 0, "Year (default this year)")
	showYearCmd.Flags().IntVarP(&showMonth, "month", "m", 0, "Only this month")
	showYearCmd.Flags().BoolVar(&showByWeek, "weeks", false, "Group by ISO week instead of month")

	showCmd.AddCommand(showYearCmd)
	showCmd.AddCommand(showMonthCmd)
	showCmd.AddCommand(showWeekCmd)
	showCmd.AddCommand(showDayCmd)
}

func newShowPrinter(fee float64) *report.Printer {
	p := report.NewPrinter(os.Stdout, report.Options{
		Worked:  showWorked,
		Days:    showDays || showParts,
		Parts:   showParts,
		Verbose: showVerbose,
		Fee:     fee,
	})
	if showVerbose {
		p.Header()
	}
	return p
}

// intArg parses args[0] as a number in [lo, hi], or returns def.
func intArg(args []string, def, lo, hi int, what string) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func yearOrNow(now time.Time) int {
	if showYear != 0 {
		return showYear
	}
	return now.Year()
}

func runShowYear(cmd *cobra.Command, args []string) error {
	now := time.Now()
	y, err := intArg(args, now.Year(), 1, 65535, "year")
	if err != nil {
		return err
	}

	sess := mustOpenSession(context.Background())
	defer sess.close()

	year := sess.store.Year(uint16(y))
	if year == nil {
		fmt.Printf("No data recorded for %d.\n", y)
		return nil
	}
	p := newShowPrinter(sess.store.FeePerHour)
	if showMonth != 0 {
		m, ok := year.Month(time.Month(showMonth))
		if !ok {
			fmt.Printf("No data recorded for %d-%02d.\n", y, showMonth)
			return nil
		}
		p.Month(m)
		return nil
	}
	if showByWeek {
		p.Weeks(year.Weeks())
		return nil
	}
	p.Years([]*model.Year{year})
	return nil
}

func runShowMonth(cmd *cobra.Command, args []string) error {
	now := time.Now()
	m, err := intArg(args, int(now.Month()), 1, 12, "month")
	if err != nil {
		return err
	}
	y := yearOrNow(now)

	sess := mustOpenSession(context.Background())
	defer sess.close()

	month, ok := sess.store.Month(uint16(y), time.Month(m))
	if !ok {
		fmt.Printf("No data recorded for %d-%02d.\n", y, m)
		return nil
	}
	newShowPrinter(sess.store.FeePerHour).Month(month)
	return nil
}

func runShowWeek(cmd *cobra.Command, args []string) error {
	now := time.Now()
	_, current := now.ISOWeek()
	w, err := intArg(args, current, 1, 53, "week")
	if err != nil {
		return err
	}
	y := yearOrNow(now)

	sess := mustOpenSession(context.Background())
	defer sess.close()

	week, ok := sess.store.Week(uint16(y), w)
	if !ok {
		fmt.Printf("No data recorded for week %d of %d.\n", w, y)
		return nil
	}
	newShowPrinter(sess.store.FeePerHour).Week(week)
	return nil
}

func runShowDay(cmd *cobra.Command, args []string) error {
	dates, err := parseDateArgs(newParser(time.Now()), args)
	if err != nil {
		return err
	}

	sess := mustOpenSession(context.Background())
	defer sess.close()

	showDays = true
	p := newShowPrinter(sess.store.FeePerHour)
	var days []*model.Day
	for _, d := range dates {
		day := sess.store.Day(uint16(d.Year), d.Month, d.Day)
		if day == nil {
			fmt.Printf("No data recorded for %s.\n", d)
			continue
		}
		days = append(days, day)
	}
	p.Days(days)
	return nil
}
