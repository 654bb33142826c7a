// Package report renders recorded time for humans: the detailed listing of
// "reti show" and the per-factor summaries of "reti report".
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/timecalc"
)

// Options select what the Printer shows.
type Options struct {
	Worked  bool // worked time per day and totals
	Days    bool // list the days of months and weeks
	Parts   bool // list the parts of each day
	Verbose bool // weekday, counts, factor breakdown and earnings
	Fee     float64
}

// Printer writes the text listing of years, months, weeks and days.
type Printer struct {
	w    io.Writer
	opts Options
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Header prints the fee every earning is based on.
func (p *Printer) Header() {
	fmt.Fprintf(p.w, "Assumed fee per hour: %.2f\n", p.opts.Fee)
}

// Years prints every month of each year followed by the accumulated totals.
func (p *Printer) Years(years []*model.Year) {
	for _, y := range years {
		months := y.Months()
		fmt.Fprintf(p.w, "Year: %d, %d month(s) recorded\n", y.Year, len(months))
		for _, m := range months {
			p.Month(m)
			fmt.Fprintln(p.w, "-------")
		}
		if p.opts.Worked {
			fmt.Fprintf(p.w, "Accumulated worked: %s - earned: %.2f\n",
				timecalc.FormatHours(y.Worked()), y.Earned(p.opts.Fee))
		}
	}
}

func (p *Printer) Month(m model.Month) {
	fmt.Fprintf(p.w, "Month: %d - %s\n", int(m.Month), m.Name())
	days := m.Days()
	p.summary(days, m.Worked(), m.AveragePerDay())
	if p.opts.Verbose {
		for _, f := range m.Factors() {
			fmt.Fprintf(p.w, "Worked factor %.1f: %s\n", f.Factor, timecalc.FormatHours(f.Worked))
		}
		fmt.Fprintf(p.w, "total earned: %.2f\n", m.Earned(p.opts.Fee))
	}
}

func (p *Printer) Weeks(weeks []model.Week) {
	for _, w := range weeks {
		p.Week(w)
	}
}

func (p *Printer) Week(w model.Week) {
	fmt.Fprintf(p.w, "Week: %d (%s)\n", w.Number, timecalc.ISOWeekLabel(int(w.Year()), w.Number))
	p.summary(w.Days(), w.Worked(), w.AveragePerDay())
	if p.opts.Verbose {
		fmt.Fprintf(p.w, "total earned: %.2f\n", w.Earned(p.opts.Fee))
	}
}

// summary prints the block shared by months and weeks.
func (p *Printer) summary(days []*model.Day, worked, avg time.Duration) {
	if p.opts.Verbose {
		fmt.Fprintf(p.w, "Days recorded: %d\n", len(days))
	}
	if p.opts.Days {
		p.Days(days)
	}
	if p.opts.Worked {
		fmt.Fprintf(p.w, "total worked: %s\n", timecalc.FormatHours(worked))
		fmt.Fprintf(p.w, "avg worked per day: %s/day\n", timecalc.FormatHours(avg))
	}
}

func (p *Printer) Days(days []*model.Day) {
	for _, d := range days {
		p.Day(d)
	}
}

func (p *Printer) Day(d *model.Day) {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s", d.Date)
	if p.opts.Verbose {
		fmt.Fprintf(&b, " (%s)", d.Date.Weekday().String()[:3])
	}
	if p.opts.Worked {
		fmt.Fprintf(&b, " worked: %6s", timecalc.FormatHours(d.Worked()))
	}
	if p.opts.Parts {
		parts := d.SortedParts()
		list := make([]string, len(parts))
		for i, part := range parts {
			stop := "open"
			if part.Stop != nil {
				stop = part.Stop.String()
			}
			list[i] = fmt.Sprintf("%s-%s f: %.1f", part.Start, stop, part.Rate())
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(list, ", "))
	}
	if p.opts.Verbose {
		fmt.Fprintf(&b, " (%d parts) earned: %.2f", len(d.Parts), d.Earned(p.opts.Fee))
	}
	if d.Comment != nil {
		fmt.Fprintf(&b, "  (%s)", *d.Comment)
	}
	fmt.Fprintln(p.w, b.String())
}
