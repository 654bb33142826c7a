package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/timecalc"
)

// Summary aggregates a period by factor.
type Summary struct {
	Label        string        `json:"label"`
	Days         int           `json:"days"`
	Factors      []FactorTotal `json:"factors"`
	TotalMinutes int64         `json:"total_minutes"`
	Earned       float64       `json:"earned"`
}

type FactorTotal struct {
	Factor  float64 `json:"factor"`
	Minutes int64   `json:"duration_minutes"`
}

// Summarize totals the closed parts of days at the given fee.
func Summarize(label string, days []*model.Day, fee float64) Summary {
	s := Summary{Label: label, Days: len(days), Factors: []FactorTotal{}}
	var total time.Duration
	for _, d := range days {
		total += d.Worked()
		s.Earned += d.Earned(fee)
	}
	for _, f := range model.Factors(days) {
		s.Factors = append(s.Factors, FactorTotal{Factor: f.Factor, Minutes: int64(f.Worked / time.Minute)})
	}
	s.TotalMinutes = int64(total / time.Minute)
	return s
}

// Write renders the summary as md (plain text table), csv or json.
func (s Summary) Write(w io.Writer, format string) error {
	switch format {
	case "csv":
		fmt.Fprintln(w, "factor,duration_minutes")
		for _, f := range s.Factors {
			fmt.Fprintf(w, "%.1f,%d\n", f.Factor, f.Minutes)
		}
		_, err := fmt.Fprintf(w, "total,%d\n", s.TotalMinutes)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "md", "":
		fmt.Fprintf(w, "%s\n", s.Label)
		fmt.Fprintln(w, "--------------------------------")
		for _, f := range s.Factors {
			fmt.Fprintf(w, "%-20s%s\n", fmt.Sprintf("factor %.1f", f.Factor), timecalc.FormatDuration(time.Duration(f.Minutes)*time.Minute))
		}
		fmt.Fprintln(w, "--------------------------------")
		fmt.Fprintf(w, "%-20s%s\n", "Total", timecalc.FormatDuration(time.Duration(s.TotalMinutes)*time.Minute))
		_, err := fmt.Fprintf(w, "%-20s%.2f\n", "Earned", s.Earned)
		return err
	default:
		return fmt.Errorf("unknown report format %q (want md, csv or json)", format)
	}
}
