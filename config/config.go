// Package config holds the tracker settings record and the ways to obtain
// one: built-in defaults, a YAML settings file, TRACKER_* environment
// variables, or a combination layered in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ggoodman/tracker-go/format"
	"github.com/ggoodman/tracker-go/storage"
	"github.com/invopop/jsonschema"
	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 3000
	DefaultBasePath    = "/api/"
	DefaultUserToken   = "a:"
	DefaultBatchSize   = 2
	DefaultLogFile     = "TrackerAsset.log"
	DefaultStorageType = StorageNet
	DefaultTraceFormat = format.XAPI
)

// ErrInvalidSettings is wrapped by every error Validate returns.
var ErrInvalidSettings = errors.New("config: invalid settings")

// StorageType selects the delivery sink.
type StorageType string

const (
	// StorageNet delivers batches to the remote collector.
	StorageNet StorageType = "net"
	// StorageLocal appends batches to a blob in local storage.
	StorageLocal StorageType = "local"
)

// Valid reports whether t is a known storage type.
func (t StorageType) Valid() bool {
	return t == StorageNet || t == StorageLocal
}

// Settings configures a tracker. The zero value is not usable; start from
// Default.
type Settings struct {
	Host         string        `yaml:"host" json:"host" env:"TRACKER_HOST" jsonschema:"description=Collector host name or address"`
	Port         int           `yaml:"port" json:"port" env:"TRACKER_PORT" jsonschema:"minimum=0,maximum=65535,description=Collector port (0 for the scheme default)"`
	Secure       bool          `yaml:"secure" json:"secure" env:"TRACKER_SECURE" jsonschema:"description=Use https"`
	BasePath     string        `yaml:"basePath" json:"basePath" env:"TRACKER_BASE_PATH" jsonschema:"description=Path prefix of the collector API"`
	UserToken    string        `yaml:"userToken" json:"userToken" env:"TRACKER_USER_TOKEN" jsonschema:"description=Bearer token presented when starting a session"`
	TrackingCode string        `yaml:"trackingCode" json:"trackingCode" env:"TRACKER_TRACKING_CODE" jsonschema:"description=Tracking code of the activity being traced"`
	StorageType  StorageType   `yaml:"storageType" json:"storageType" env:"TRACKER_STORAGE_TYPE" jsonschema:"enum=net,enum=local"`
	TraceFormat  format.Format `yaml:"traceFormat" json:"traceFormat" env:"TRACKER_TRACE_FORMAT" jsonschema:"enum=json,enum=xml,enum=xapi,enum=csv"`
	BatchSize    int           `yaml:"batchSize" json:"batchSize" env:"TRACKER_BATCH_SIZE" jsonschema:"minimum=0,description=Events per flush (0 sends everything)"`
	LogFile      string        `yaml:"logFile" json:"logFile" env:"TRACKER_LOG_FILE" jsonschema:"description=Blob id written by the local sink"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Host:        DefaultHost,
		Port:        DefaultPort,
		BasePath:    DefaultBasePath,
		UserToken:   DefaultUserToken,
		StorageType: DefaultStorageType,
		TraceFormat: DefaultTraceFormat,
		BatchSize:   DefaultBatchSize,
		LogFile:     DefaultLogFile,
	}
}

// Load reads a YAML settings file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes s as YAML to path, creating parent directories.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// FromEnv overlays TRACKER_* environment variables onto base. Variables that
// are not set leave the corresponding field untouched.
func FromEnv(base Settings) (Settings, error) {
	s := base
	if err := envdecode.Decode(&s); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return base, fmt.Errorf("decode environment: %w", err)
	}
	return s, nil
}

// Validate checks every field and reports all problems at once.
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Host) == "" {
		problems = append(problems, "host is required")
	}
	if s.Port < 0 || s.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", s.Port))
	}
	if !s.StorageType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown storageType %q", s.StorageType))
	}
	if !s.TraceFormat.Valid() {
		problems = append(problems, fmt.Sprintf("unknown traceFormat %q", s.TraceFormat))
	}
	if s.BatchSize < 0 {
		problems = append(problems, "batchSize must not be negative")
	}
	if s.StorageType == StorageLocal {
		if err := storage.ValidateID(s.LogFile); err != nil {
			problems = append(problems, fmt.Sprintf("logFile %q is not a valid blob id", s.LogFile))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
}

// Schema returns the JSON schema describing a settings document.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
	sch := r.Reflect(&Settings{})
	return json.MarshalIndent(sch, "", "  ")
}
