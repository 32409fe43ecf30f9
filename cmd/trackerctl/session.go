package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/tracker-go/config"
	"github.com/spf13/cobra"
)

var requestTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the collector health endpoint",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

var loginCmd = &cobra.Command{
	Use:   "login USERNAME PASSWORD",
	Short: "Exchange credentials for a user token",
	Long: `Exchange credentials for a user token.

With --config, the token is written back into the settings file so later
commands start sessions as this user.`,
	Args: cobra.ExactArgs(2),
	RunE: runLogin,
}

var startCmd = &cobra.Command{
	Use:   "start [TRACKING_CODE]",
	Short: "Start a tracking session and print it",
	Long: `Start a tracking session and print it.

Without an argument the tracking code from the settings is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

func init() {
	for _, c := range []*cobra.Command{healthCmd, loginCmd, startCmd} {
		c.Flags().DurationVar(&requestTimeout, "timeout", 10*time.Second, "overall timeout")
		rootCmd.AddCommand(c)
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	t, closeStore, err := newTracker(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if !t.CheckHealth(ctx) {
		return errors.New("collector health check failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.Health())
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	t, closeStore, err := newTracker(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	if !t.Login(ctx, args[0], args[1]) {
		return errors.New("login failed")
	}
	token := t.Session().UserToken

	if configPath != "" {
		s, err := config.Load(configPath)
		if err != nil {
			return err
		}
		s.UserToken = token
		if err := config.Save(configPath, s); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
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
	if code == "" {
		return errors.New("no tracking code given")
	}

	active := t.Start(ctx, code)
	if err := printSession(cmd, t.Session()); err != nil {
		return err
	}
	if !active {
		return errors.New("session is not active")
	}
	return nil
}
