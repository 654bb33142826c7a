package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/msgraph"
	"github.com/Tiliavir/reti/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncWeek   bool
	outlookSyncDryRun bool
	outlookSyncFactor float64
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record Outlook calendar events as parts",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncWeek, "week", false, "Sync the current week")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().Float64Var(&outlookSyncFactor, "factor", 0, "Factor for imported parts (default outlook.factor)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default outlook.timezone)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange resolves the date flags to [from, to].
func syncRange(now time.Time) (time.Time, time.Time, error) {
	parse := func(flag, v string) (time.Time, error) {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s value %q: %w", flag, v, err)
		}
		return t, nil
	}

	switch {
	case outlookSyncDate != "":
		d, err := parse("date", outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return timecalc.StartOfDay(d), timecalc.EndOfDay(d), nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parse("from", outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to := now
		if outlookSyncTo != "" {
			if to, err = parse("to", outlookSyncTo); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", outlookSyncTo, outlookSyncFrom)
		}
		return timecalc.StartOfDay(from), timecalc.EndOfDay(to), nil

	case outlookSyncWeek:
		from, to := timecalc.WeekRange(now)
		return from, to, nil

	default:
		return timecalc.StartOfDay(now), timecalc.EndOfDay(now), nil
	}
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncRange(time.Now())
	if err != nil {
		return err
	}

	factor := cfg.Outlook.Factor
	if cmd.Flags().Changed("factor") {
		if outlookSyncFactor < 0 {
			return fmt.Errorf("invalid --factor %v: must not be negative", outlookSyncFactor)
		}
		factor = outlookSyncFactor
	}
	timezone := cfg.Outlook.Timezone
	if outlookSyncTZ != "" {
		if _, err := time.LoadLocation(outlookSyncTZ); err != nil {
			return fmt.Errorf("invalid --timezone %q: %w", outlookSyncTZ, err)
		}
		timezone = outlookSyncTZ
	}

	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Syncing Outlook events (%s → %s)%s...\n",
		from.Format("2006-01-02"), to.Format("2006-01-02"), dryTag)
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess := mustOpenSession(ctx)
	defer sess.close()

	tokens, err := msgraph.DefaultTokenFile()
	if err != nil {
		return err
	}
	oauthCfg := msgraph.OAuth2Config(cfg.Outlook.TenantID, cfg.Outlook.ClientID)
	tok, err := msgraph.Authenticate(ctx, oauthCfg, tokens, os.Stdout, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		os.Exit(1)
	}

	client := msgraph.NewClient(ctx, tok, oauthCfg, tokens)
	events, err := client.CalendarView(ctx, from, to, timezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
		os.Exit(1)
	}

	result := msgraph.SyncEvents(sess.store, events, msgraph.SyncOptions{
		Factor:   factor,
		Timezone: timezone,
		DryRun:   outlookSyncDryRun,
		Out:      os.Stdout,
		Log:      logger,
	})
	if !outlookSyncDryRun && result.Imported > 0 {
		sess.save(ctx)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	fmt.Printf("  %d conflicts\n", result.Conflicts)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		sess.close()
		os.Exit(2)
	}
	return nil
}
