package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/reti/internal/log"
	"github.com/Tiliavir/reti/internal/watch"
)

var (
	watchInterval time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <legacy_file>...",
	Short: "Import legacy files again whenever they are written",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", watch.DefaultMinInterval, "Minimum time between two imports of a file")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", true, "Import the files once on start")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	// The store and backend are shared by all watchers.
	var mu sync.Mutex
	onChange := func(path string) func(context.Context, []byte) error {
		return func(ctx context.Context, content []byte) error {
			mu.Lock()
			defer mu.Unlock()

			res, err := sess.importer().ImportReader(bytes.NewReader(content))
			if err != nil {
				return err
			}
			logger.Info("imported", log.FieldFile, path, "result", res.String())
			if !res.Changed() {
				return nil
			}
			if err := sess.backend.Save(ctx, sess.store); err != nil {
				return fmt.Errorf("saving store: %w", err)
			}
			return nil
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range args {
		w := &watch.Watcher{
			Path:        path,
			OnChange:    onChange(path),
			MinInterval: watchInterval,
			Initial:     watchInitial,
			Log:         logger,
		}
		g.Go(func() error { return w.Run(ctx) })
	}
	fmt.Printf("Watching %d file(s), press Ctrl+C to stop.\n", len(args))
	return g.Wait()
}
