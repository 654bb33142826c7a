package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/parser"
)

var (
	addDate   string
	addFactor float64
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add parts to a day",
}

var addPartCmd = &cobra.Command{
	Use:   "part <start|now> [stop|now]",
	Short: "Add one part; without stop the part stays open",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAddPart,
}

var addPartsCmd = &cobra.Command{
	Use:   "parts <part>...",
	Short: "Add parts written as HH:MM-HH:MM[-factor]",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAddParts,
}

var addParseCmd = &cobra.Command{
	Use:   "parse <text>...",
	Short: "Add a day written as a legacy line: [date] part... [# comment]",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAddParse,
}

func init() {
	for _, c := range []*cobra.Command{addPartCmd, addPartsCmd} {
		c.Flags().StringVarP(&addDate, "date", "d", "", "Day to add to: y-m-d, m-d or d (default today)")
	}
	addPartCmd.Flags().Float64Var(&addFactor, "factor", 0, "Pay-rate factor of the part (default 1)")
	addCmd.AddCommand(addPartCmd)
	addCmd.AddCommand(addPartsCmd)
	addCmd.AddCommand(addParseCmd)
}

// addTarget resolves --date against today.
func addTarget(p *parser.Parser) (model.Date, error) {
	if addDate == "" {
		return p.Today(), nil
	}
	return p.ParseDate(addDate)
}

func runAddPart(cmd *cobra.Command, args []string) error {
	now := time.Now()
	p := newParser(now)
	date, err := addTarget(p)
	if err != nil {
		return err
	}
	part, err := partFromArgs(args, now)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("factor") {
		if addFactor < 0 {
			return fmt.Errorf("invalid factor %v: must not be negative", addFactor)
		}
		part = part.WithFactor(addFactor)
	}
	return addParts(date, []model.Part{part})
}

// partFromArgs builds a part from a start and an optional stop argument.
func partFromArgs(args []string, now time.Time) (model.Part, error) {
	if args[0] == "_" {
		return model.Part{}, errors.New("a part needs a start time")
	}
	start, err := parseClockArg(args[0], now)
	if err != nil {
		return model.Part{}, err
	}
	if len(args) == 1 {
		return model.OpenPart(start), nil
	}
	stop, err := parseStopArg(args[1], now)
	if err != nil {
		return model.Part{}, err
	}
	part := model.NewPart(start, stop)
	if !part.Valid() {
		return model.Part{}, fmt.Errorf("%w: %s", model.ErrStopBeforeStart, part)
	}
	return part, nil
}

func runAddParts(cmd *cobra.Command, args []string) error {
	p := newParser(time.Now())
	date, err := addTarget(p)
	if err != nil {
		return err
	}
	var parts []model.Part
	for _, a := range args {
		part, err := p.ParsePart(a)
		if err != nil {
			if p.Mode() == parser.Strict {
				return err
			}
			fmt.Fprintf(os.Stderr, "Warning: skipping %v\n", err)
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return errors.New("no valid parts given")
	}
	return addParts(date, parts)
}

func addParts(date model.Date, parts []model.Part) error {
	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	var m model.Merge
	var err error
	if len(parts) == 1 {
		m, err = sess.store.AddPart(date, parts[0])
	} else {
		m, err = sess.store.AddDay(model.NewDay(date, parts...))
	}
	if err != nil {
		return err
	}
	printMerge(date, m)
	if m.Changed() {
		sess.save(ctx)
	}
	return nil
}

func runAddParse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	line := strings.Join(args, " ")
	day, err := newParser(time.Now()).ParseLine(line)
	if err != nil {
		return err
	}
	m, err := sess.store.AddDay(day)
	if err != nil {
		return err
	}
	printMerge(day.Date, m)
	if m.Changed() {
		sess.save(ctx)
	}
	return nil
}
