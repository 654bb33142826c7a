package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rmForce bool

var rmCmd = &cobra.Command{
	Use:   "rm <date>...",
	Short: "Remove days; without --force only shows what would be removed",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

func init() {
	rmCmd.Flags().BoolVar(&rmForce, "force", false, "Actually remove the days")
}

func runRm(cmd *cobra.Command, args []string) error {
	dates, err := parseDateArgs(newParser(time.Now()), args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	removed := 0
	for _, d := range dates {
		day := sess.store.Day(uint16(d.Year), d.Month, d.Day)
		if day == nil {
			fmt.Printf("No day recorded for %s\n", d)
			continue
		}
		if !rmForce {
			fmt.Printf("Would remove: %s\n", day.Legacy())
			continue
		}
		line := day.Legacy()
		if sess.store.RemoveDay(d) {
			fmt.Printf("Removed: %s\n", line)
			removed++
		}
	}

	if !rmForce {
		fmt.Println("Nothing removed, pass --force to remove.")
		return nil
	}
	if removed > 0 {
		sess.save(ctx)
	}
	return nil
}
