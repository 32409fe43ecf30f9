package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ggoodman/tracker-go/config"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and create settings files",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "host:         %s\n", s.Host)
		fmt.Fprintf(out, "port:         %d\n", s.Port)
		fmt.Fprintf(out, "secure:       %t\n", s.Secure)
		fmt.Fprintf(out, "basePath:     %s\n", s.BasePath)
		fmt.Fprintf(out, "trackingCode: %s\n", s.TrackingCode)
		fmt.Fprintf(out, "storageType:  %s\n", s.StorageType)
		fmt.Fprintf(out, "traceFormat:  %s\n", s.TraceFormat)
		fmt.Fprintf(out, "batchSize:    %d\n", s.BatchSize)
		fmt.Fprintf(out, "logFile:      %s\n", s.LogFile)
		return nil
	},
}

var settingsInitCmd = &cobra.Command{
	Use:   "init PATH",
	Short: "Write a settings file with the defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return config.Save(args[0], config.Default())
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := config.Schema()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return err
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsInitCmd, schemaCmd)
	rootCmd.AddCommand(settingsCmd)
}
