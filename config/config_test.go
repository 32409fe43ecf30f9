package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ggoodman/tracker-go/format"
)

func TestDefault(t *testing.T) {
	s := Default()
	want := Settings{
		Host:        "127.0.0.1",
		Port:        3000,
		BasePath:    "/api/",
		UserToken:   "a:",
		StorageType: StorageNet,
		TraceFormat: format.XAPI,
		BatchSize:   2,
		LogFile:     "TrackerAsset.log",
	}
	if s != want {
		t.Fatalf("Default() = %+v, want %+v", s, want)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	body := "host: a2.example.com\nport: 443\nsecure: true\ntraceFormat: csv\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if s.Host != "a2.example.com" || s.Port != 443 || !s.Secure || s.TraceFormat != format.CSV {
		t.Fatalf("file values not applied: %+v", s)
	}
	if s.BasePath != DefaultBasePath || s.BatchSize != DefaultBatchSize || s.LogFile != DefaultLogFile {
		t.Fatalf("defaults lost: %+v", s)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want parse error")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.yaml")
	s := Default()
	s.TrackingCode = "game-42"
	s.StorageType = StorageLocal
	s.BatchSize = 0

	if err := Save(path, s); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got != s {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TRACKER_HOST", "collector.internal")
	t.Setenv("TRACKER_BATCH_SIZE", "10")
	t.Setenv("TRACKER_TRACE_FORMAT", "json")

	base := Default()
	base.TrackingCode = "kept"

	s, err := FromEnv(base)
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}
	if s.Host != "collector.internal" || s.BatchSize != 10 || s.TraceFormat != format.JSON {
		t.Fatalf("env not applied: %+v", s)
	}
	if s.TrackingCode != "kept" || s.Port != DefaultPort || s.UserToken != DefaultUserToken {
		t.Fatalf("unset variables should not change fields: %+v", s)
	}
}

func TestFromEnvNothingSet(t *testing.T) {
	base := Default()
	s, err := FromEnv(base)
	if err != nil {
		t.Fatalf("FromEnv() failed: %v", err)
	}
	if s != base {
		t.Fatalf("got %+v, want %+v", s, base)
	}
}

func TestFromEnvBadValue(t *testing.T) {
	t.Setenv("TRACKER_PORT", "not-a-number")
	if _, err := FromEnv(Default()); err == nil {
		t.Fatal("want decode error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"blank host", func(s *Settings) { s.Host = " " }, "host"},
		{"port", func(s *Settings) { s.Port = 70000 }, "port"},
		{"storage", func(s *Settings) { s.StorageType = "disk" }, "storageType"},
		{"format", func(s *Settings) { s.TraceFormat = "yaml" }, "traceFormat"},
		{"batch", func(s *Settings) { s.BatchSize = -1 }, "batchSize"},
		{"log file", func(s *Settings) {
			s.StorageType = StorageLocal
			s.LogFile = "../escape.log"
		}, "logFile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("want ErrInvalidSettings, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateLogFileIgnoredForNet(t *testing.T) {
	s := Default()
	s.LogFile = ""
	if err := s.Validate(); err != nil {
		t.Fatalf("net settings should not require a log file: %v", err)
	}
}

func TestSchema(t *testing.T) {
	raw, err := Schema()
	if err != nil {
		t.Fatalf("Schema() failed: %v", err)
	}
	var doc struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc.Type != "object" {
		t.Fatalf("want object schema, got %q", doc.Type)
	}
	for _, key := range []string{"host", "port", "secure", "basePath", "userToken", "trackingCode", "storageType", "traceFormat", "batchSize", "logFile"} {
		if _, ok := doc.Properties[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
	if !strings.Contains(string(doc.Properties["traceFormat"]), "xapi") {
		t.Errorf("traceFormat schema should enumerate formats: %s", doc.Properties["traceFormat"])
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Settings, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(s Settings, err error) {
			if err == nil {
				got <- s
			}
		})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	updated := Default()
	updated.BatchSize = 7
	for {
		select {
		case s := <-got:
			if s.BatchSize == 7 {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("Watch() returned %v", err)
				}
				return
			}
		case <-tick.C:
			if err := Save(path, updated); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}
