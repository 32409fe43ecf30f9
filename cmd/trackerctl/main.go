package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	storeKind  string
	storePath  string
	jsonFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "trackerctl",
	Short: "Drive a tracker against a collector or local storage",
	Long: `trackerctl exercises the tracker SDK from the command line.

Settings come from the built-in defaults, then the YAML file given with
--config, then TRACKER_* environment variables.

It allows you to:
  - Probe collector health and log in
  - Start a tracking session and inspect it
  - Relay events read from stdin in batches
  - Print or initialize the settings file`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML settings file")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&storeKind, "store", "file", "local storage backend (memory, file, redis, sqlite)")
	pf.StringVar(&storePath, "store-path", "", "directory for file storage or database path for sqlite")
	pf.BoolVar(&jsonFlag, "json", false, "print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
