package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/model"
	"github.com/Tiliavir/reti/internal/store"
)

var editCmd = &cobra.Command{
	Use:   "edit [date...]",
	Short: "Edit days in $EDITOR using the legacy line format",
	Long: `edit writes the given days (default today) as legacy lines into a temporary
file and opens it in the configured editor. Every line saved replaces the
day of its date; lines that no longer carry parts leave their day untouched.`,
	RunE: runEdit,
}

const editHeader = `# One day per line: [date] HH:MM-HH:MM[-factor] ... [# comment]
# Each line replaces the day of its date. Lines starting with # are ignored.
`

func runEdit(cmd *cobra.Command, args []string) error {
	now := time.Now()
	dates, err := parseDateArgs(newParser(now), args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	f, err := os.CreateTemp("", "reti-edit-*.txt")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	original := renderDays(sess.store, dates)
	if _, err := f.WriteString(original); err != nil {
		f.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := runEditor(ctx, cfg.Editor, path); err != nil {
		return err
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading edited file: %w", err)
	}
	if string(edited) == original {
		fmt.Println("No changes.")
		return nil
	}

	im := sess.importer()
	im.Force = true
	res, err := im.ImportReader(bytes.NewReader(edited))
	if err != nil {
		return err
	}
	printResult(res)
	if res.Changed() {
		sess.save(ctx)
	}
	return nil
}

// renderDays writes one legacy line per date; missing days get a line with
// the date only.
func renderDays(s *store.Store, dates []model.Date) string {
	var b strings.Builder
	b.WriteString(editHeader)
	for _, d := range dates {
		if day := s.Day(uint16(d.Year), d.Month, d.Day); day != nil {
			b.WriteString(day.Legacy())
		} else {
			b.WriteString(d.String() + "   ")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// runEditor runs editor, which may carry arguments, on path.
func runEditor(ctx context.Context, editor, path string) error {
	fields := strings.Fields(editor)
	if len(fields) == 0 {
		return errors.New("no editor configured")
	}
	logger.WithComponent(log.ComponentEditor).Debug("starting editor", "command", editor, log.FieldFile, path)

	c := exec.CommandContext(ctx, fields[0], append(fields[1:], path)...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("running editor %q: %w", editor, err)
	}
	return nil
}
