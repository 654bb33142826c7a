package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/reti/internal/config"
	"github.com/Tiliavir/reti/internal/log"
)

var (
	flagConfig   string
	flagFile     string
	flagBackend  string
	flagPretty   bool
	flagStrict   bool
	flagLogLevel string
)

// cfg and logger are set up before any command runs.
var (
	cfg    config.Config
	logger = log.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "reti",
	Short: "reti – record working times and what they earned",
	Long: `reti records the parts of each working day, rejects parts that overlap
time already recorded and sums up worked hours and earnings per day, week,
month and year. Data is kept in ~/.reti/times.json unless configured otherwise.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.reti/config.yaml)")
	pf.StringVarP(&flagFile, "file", "f", "", "Data file (overrides store.file)")
	pf.StringVar(&flagBackend, "backend", "", "Storage backend: json or sqlite")
	pf.BoolVar(&flagPretty, "save-pretty", false, "Write indented JSON")
	pf.BoolVar(&flagStrict, "strict", false, "Reject lines with any malformed token")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads .env and the config file, applies the global flags and
// installs the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		c.Store.File = flagFile
	}
	if flags.Changed("backend") {
		c.Store.Backend = flagBackend
	}
	if flags.Changed("save-pretty") {
		c.Store.Pretty = flagPretty
	}
	if flags.Changed("strict") {
		c.Parser.Strict = flagStrict
	}
	if flags.Changed("log-level") {
		c.Log.Level = flagLogLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	lc := log.DefaultConfig()
	lc.Level = level
	logger = log.New(lc)
	log.SetDefault(logger)

	cfg = c
	return nil
}
