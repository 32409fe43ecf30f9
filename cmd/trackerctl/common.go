package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	tracker "github.com/ggoodman/tracker-go"
	"github.com/ggoodman/tracker-go/config"
	"github.com/ggoodman/tracker-go/session"
	"github.com/ggoodman/tracker-go/storage"
	"github.com/ggoodman/tracker-go/storage/file"
	"github.com/ggoodman/tracker-go/storage/memory"
	"github.com/ggoodman/tracker-go/storage/redis"
	"github.com/ggoodman/tracker-go/storage/sqlite"
	"github.com/spf13/cobra"
)

const defaultSQLitePath = "tracker.db"

// loadSettings layers the settings file and the environment over the defaults.
func loadSettings() (config.Settings, error) {
	s := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	s, err := config.FromEnv(s)
	if err != nil {
		return s, err
	}
	return s, s.Validate()
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// openStore opens the backend selected with --store.
func openStore(ctx context.Context) (storage.Storage, error) {
	switch strings.ToLower(storeKind) {
	case "memory":
		return memory.New(), nil
	case "file":
		dir := storePath
		if dir == "" {
			dir = "."
		}
		return file.New(dir)
	case "redis":
		return redis.NewFromEnv(ctx)
	case "sqlite":
		path := storePath
		if path == "" {
			path = defaultSQLitePath
		}
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown --store %q", storeKind)
	}
}

// newTracker builds a tracker from the layered settings. The local store is
// only opened when the settings ask for local storage; the returned closer
// releases it.
func newTracker(cmd *cobra.Command) (*tracker.Tracker, func(), error) {
	s, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	opts := []tracker.Option{tracker.WithLogger(log)}
	closer := func() {}
	if s.StorageType == config.StorageLocal {
		store, err := openStore(cmd.Context())
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, tracker.WithStorage(store))
		closer = func() {
			if err := store.Close(); err != nil {
				log.Warn("store.close.fail", slog.String("err", err.Error()))
			}
		}
	}

	t, err := tracker.New(s, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return t, closer, nil
}

type sessionView struct {
	Status       string `json:"status"`
	TrackingCode string `json:"trackingCode"`
	ObjectID     string `json:"objectId,omitempty"`
	Actor        any    `json:"actor,omitempty"`
	Health       string `json:"health,omitempty"`
}

func viewOf(snap session.Snapshot) sessionView {
	v := sessionView{
		Status:       snap.Status().String(),
		TrackingCode: snap.TrackingCode,
		ObjectID:     snap.ObjectID,
		Health:       snap.Health,
	}
	if snap.Actor != "" {
		v.Actor = json.RawMessage(snap.Actor)
	}
	return v
}

func printSession(cmd *cobra.Command, snap session.Snapshot) error {
	v := viewOf(snap)
	if jsonFlag {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status:        %s\n", v.Status)
	fmt.Fprintf(out, "tracking code: %s\n", v.TrackingCode)
	if v.ObjectID != "" {
		fmt.Fprintf(out, "object id:     %s\n", v.ObjectID)
	}
	if snap.Actor != "" {
		fmt.Fprintf(out, "actor:         %s\n", snap.Actor)
	}
	return nil
}
