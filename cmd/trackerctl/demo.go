package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo [TRACKING_CODE]",
	Short: "Send a short scripted session",
	Long: `Start a session and send three events: a screen view, a variable
update and a click. They are delivered in batches of the configured size.

Examples:
  # Deliver to a local collector
  trackerctl demo my-game

  # Append CSV lines to ./TrackerAsset.log instead
  TRACKER_STORAGE_TYPE=local TRACKER_TRACE_FORMAT=csv trackerctl demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().DurationVar(&requestTimeout, "timeout", 10*time.Second, "overall timeout")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	t, closeStore, err := newTracker(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	code := t.Settings().TrackingCode
	if len(args) > 0 {
		code = args[0]
	}

	if !t.Start(ctx, code) {
		_ = printSession(cmd, t.Session())
		return errors.New("session is not active")
	}

	t.Screen("start")
	t.Var("score", 42)
	t.Click(128, 256, "Button1")

	out := cmd.OutOrStdout()
	batches := 0
	for t.Pending() > 0 {
		n := t.Flush(ctx)
		if n == 0 {
			return fmt.Errorf("delivery failed with %d events pending", t.Pending())
		}
		batches++
		fmt.Fprintf(out, "batch %d: %d events\n", batches, n)
	}
	return nil
}
