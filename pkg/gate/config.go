package gate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config configures a Gate: where schemas live, which document instances
// validate against, and which config files to check.
type Config struct {
	// SchemaDir is the directory holding the schema documents. Every
	// .yaml, .yml, and .json file in it becomes a document named after
	// the file without its extension.
	SchemaDir string `yaml:"schema_dir" validate:"required"`

	// RootDocument names the schema document instances validate against.
	RootDocument string `yaml:"root_document" validate:"required"`

	// ConfigPaths lists config files or directories of config files to
	// check. Directories are walked for YAML and JSON files.
	ConfigPaths []string `yaml:"config_paths"`

	// ClosedObjects rejects undeclared keys on object shapes that do not
	// set additionalProperties themselves.
	ClosedObjects bool `yaml:"closed_objects"`

	// Watch configures watch mode.
	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig configures watch mode: recheck on filesystem changes.
type WatchConfig struct {
	// Enabled turns watch mode on.
	Enabled bool `yaml:"enabled"`

	// DebounceMillis is how long changes must settle before a recheck
	// fires. Zero means the default of 500ms.
	DebounceMillis int `yaml:"debounce_ms" validate:"min=0"`

	// MetricsAddr is the listen address for the Prometheus endpoint in
	// watch mode. Empty disables metrics.
	MetricsAddr string `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
}

// Debounce returns the watch debounce interval.
func (w *WatchConfig) Debounce() time.Duration {
	if w.DebounceMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(w.DebounceMillis) * time.Millisecond
}

// DefaultConfig returns a default gate configuration.
func DefaultConfig() *Config {
	return &Config{
		SchemaDir:    "./schemas",
		RootDocument: "clusterman",
		Watch: WatchConfig{
			DebounceMillis: 500,
		},
	}
}

// LoadConfig reads a gate configuration file. Unknown keys are rejected so
// typos in config files fail loudly.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gate config: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse gate config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var structValidator = validator.New()

// Validate checks the configuration for missing or malformed fields.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid gate config: %w", err)
	}
	return nil
}
