package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/storage"
	"github.com/Tiliavir/reti/internal/store"
)

var (
	exportFormat string
	exportYear   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded days to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "legacy", "Output format: legacy, csv, json")
	exportCmd.Flags().IntVarP(&exportYear, "year", "y", 0, "Only this year (default all)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sess := mustOpenSession(context.Background())
	defer sess.close()

	s := sess.store
	if exportYear != 0 {
		year := s.Year(uint16(exportYear))
		if year == nil {
			return fmt.Errorf("no data recorded for %d", exportYear)
		}
		s = &store.Store{FeePerHour: s.FeePerHour, Years: []*model.Year{year}}
	}

	switch exportFormat {
	case "json":
		if err := storage.Encode(os.Stdout, s, true); err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
	case "legacy":
		writeLegacy(os.Stdout, s)
	case "csv":
		writeCSV(os.Stdout, s)
	default:
		return fmt.Errorf("unknown format %q (want legacy, csv or json)", exportFormat)
	}
	return nil
}

func writeLegacy(w io.Writer, s *store.Store) {
	for _, y := range sortedYears(s) {
		for _, d := range y.SortedDays() {
			fmt.Fprintln(w, d.Legacy())
		}
	}
}

// writeCSV writes one row per part.
func writeCSV(w io.Writer, s *store.Store) {
	fmt.Fprintln(w, "date,start,stop,factor,worked_minutes,earned,comment")
	for _, y := range sortedYears(s) {
		for _, d := range y.SortedDays() {
			comment := ""
			if d.Comment != nil {
				comment = *d.Comment
			}
			for _, p := range d.SortedParts() {
				stop := ""
				if p.Stop != nil {
					stop = p.Stop.String()
				}
				worked, _ := p.Worked()
				fmt.Fprintf(w, "%s,%s,%s,%s,%d,%.2f,%s\n",
					d.Date,
					p.Start,
					stop,
					strconv.FormatFloat(p.Rate(), 'f', -1, 64),
					int64(worked.Minutes()),
					p.Earned(s.FeePerHour),
					csvEscape(comment),
				)
			}
		}
	}
}

func sortedYears(s *store.Store) []*model.Year {
	years := slices.Clone(s.Years)
	slices.SortFunc(years, func(a, b *model.Year) int { return int(a.Year) - int(b.Year) })
	return years
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
