package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tracker "github.com/ggoodman/tracker-go"
	"github.com/ggoodman/tracker-go/config"
	"github.com/spf13/cobra"
)

var (
	flushInterval time.Duration
	watchConfig   bool
)

var relayCmd = &cobra.Command{
	Use:   "relay [TRACKING_CODE]",
	Short: "Relay events read from stdin",
	Long: `Start a session, then read one event per line from stdin and deliver
them in batches. A line is KIND TARGET [VALUE], separated by spaces; the
value is the rest of the line. Blank lines and lines starting with # are
ignored.

Queued events are flushed every --interval and once more at end of input.
With --watch, edits to the --config file are applied without restarting.

Examples:
  printf 'screen start\nvar score 42\nclick Button1 128x256\n' | trackerctl relay demo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelay,
}

func init() {
	relayCmd.Flags().DurationVar(&flushInterval, "interval", 2*time.Second, "flush interval")
	relayCmd.Flags().BoolVar(&watchConfig, "watch", false, "reload --config when it changes")
	rootCmd.AddCommand(relayCmd)
}

// parseLine splits a relay input line into kind, target and value. ok is
// false for lines that carry no event.
func parseLine(line string) (kind, target, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", "", false
	}
	parts := strings.SplitN(line, " ", 3)
	kind = parts[0]
	if len(parts) > 1 {
		target = parts[1]
	}
	if len(parts) > 2 {
		value = strings.TrimSpace(parts[2])
	}
	return kind, target, value, true
}

func runRelay(cmd *cobra.Command, args []string) error {
	if watchConfig && configPath == "" {
		return errors.New("--watch needs --config")
	}

	t, closeStore, err := newTracker(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	code := t.Settings().TrackingCode
	if len(args) > 0 {
		code = args[0]
	}
	if !t.Start(ctx, code) {
		return errors.New("session is not active")
	}

	if watchConfig {
		go func() {
			err := config.Watch(ctx, configPath, func(s config.Settings, err error) {
				if err != nil {
					log.Warn("relay.settings.reload_fail", slog.String("err", err.Error()))
					return
				}
				if err := t.UpdateSettings(s); err != nil {
					log.Warn("relay.settings.reject", slog.String("err", err.Error()))
				}
			})
			if err != nil {
				log.Warn("relay.settings.watch_fail", slog.String("err", err.Error()))
			}
		}()
	}

	return relay(ctx, t, cmd.InOrStdin(), cmd.OutOrStdout(), log)
}

// relay feeds lines from in to t until in ends or ctx is done, flushing on
// every tick and draining the queue before returning.
func relay(ctx context.Context, t *tracker.Tracker, in io.Reader, out io.Writer, log *slog.Logger) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	tick := time.NewTicker(flushInterval)
	defer tick.Stop()

	delivered, rejected := 0, 0
	for {
		select {
		case <-ctx.Done():
			delivered += drain(context.WithoutCancel(ctx), t)
			fmt.Fprintf(out, "relayed %d events (%d rejected, %d undelivered)\n", delivered, rejected, t.Pending())
			return nil
		case <-tick.C:
			delivered += t.Flush(ctx)
		case line, ok := <-lines:
			if !ok {
				delivered += drain(ctx, t)
				fmt.Fprintf(out, "relayed %d events (%d rejected, %d undelivered)\n", delivered, rejected, t.Pending())
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			kind, target, value, ok := parseLine(line)
			if !ok {
				continue
			}
			if err := t.Trace(kind, target, value); err != nil {
				rejected++
				log.Warn("relay.line.reject", slog.String("line", line), slog.String("err", err.Error()))
			}
		}
	}
}

func drain(ctx context.Context, t *tracker.Tracker) int {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return t.FlushAll(ctx)
}
