package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/importer"
	"github.com/Tiliavir/reti/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init <legacy_file>",
	Short: "Create a new store from a legacy file, replacing the current one",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

var importCmd = &cobra.Command{
	Use:   "import <legacy_file>",
	Short: "Merge a legacy file into the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()

	if n := len(sess.store.Years); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: replacing %d recorded year(s)\n", n)
	}
	sess.store = store.New()
	return importInto(ctx, sess, args[0])
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	sess := mustOpenSession(ctx)
	defer sess.close()
	return importInto(ctx, sess, args[0])
}

func importInto(ctx context.Context, sess *session, path string) error {
	res, err := sess.importer().ImportFile(path)
	if err != nil {
		return err
	}
	printResult(res)
	sess.save(ctx)
	return nil
}

func printResult(res importer.Result) {
	fmt.Printf("Import: %s\n", res)
	if res.Failed > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d line(s) could not be imported, see the log above\n", res.Failed)
	}
}
