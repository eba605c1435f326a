// config.go loads the csentry CLI configuration file.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// dsnEnvVars are consulted in order when neither the flags nor the config
// file name a DSN.
var dsnEnvVars = []string{"CSENTRY_DSN", "SENTRY_DSN"}

// Config is the CLI configuration. Flags override file values.
type Config struct {
	// DSN identifies the project to report to.
	DSN string `yaml:"dsn"`

	// SampleRate is the fraction of messages sent. Default: 1.
	SampleRate float64 `yaml:"sample_rate"`

	// Logger is the event's "logger" attribute. Default: (builtin).
	Logger string `yaml:"logger"`

	// Level is the default message level. Default: error.
	Level string `yaml:"level"`

	// SendTimeout bounds delivery. Default: 10s.
	SendTimeout string `yaml:"send_timeout"`

	// Tags are merged into every event.
	Tags map[string]string `yaml:"tags"`

	// ContextFile is a JSON or JSONC document merged as the initial
	// context (user, tags, extra).
	ContextFile string `yaml:"context_file"`

	// Echo also prints each event to stderr.
	Echo bool `yaml:"echo"`

	// CXDBAddress mirrors each event into cxdb when set.
	CXDBAddress string `yaml:"cxdb_address"`

	// Scrub enables default scrubbing of messages and context.
	Scrub bool `yaml:"scrub"`
}

// DefaultConfig returns the configuration used before any file is read.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:  1,
		Level:       string(csentry.SeverityError),
		SendTimeout: "10s",
	}
}

// LoadConfigFile reads path over the defaults. An empty path returns the
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.ContextFile = os.ExpandEnv(cfg.ContextFile)
	return cfg, nil
}

// resolveDSN fills in the DSN from the environment when unset.
func (c *Config) resolveDSN(getenv func(string) string) {
	if c.DSN != "" {
		return
	}
	for _, name := range dsnEnvVars {
		if v := getenv(name); v != "" {
			c.DSN = v
			return
		}
	}
}

// Timeout parses SendTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.SendTimeout)
	if err != nil {
		return 0, fmt.Errorf("send_timeout %q: %w", c.SendTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("send_timeout must be positive, got %s", d)
	}
	return d, nil
}

// LevelOptions maps Level to capture options.
func (c *Config) LevelOptions() (csentry.Options, error) {
	return parseLevel(c.Level)
}

func parseLevel(name string) (csentry.Options, error) {
	switch s := csentry.Severity(strings.ToLower(name)); s {
	case csentry.SeverityDebug, csentry.SeverityInfo, csentry.SeverityWarning,
		csentry.SeverityError, csentry.SeverityFatal:
		return csentry.OptionsFor(s), nil
	case "warn":
		return csentry.LevelWarning, nil
	}
	return 0, fmt.Errorf("unknown level %q", name)
}

// loadContextFile reads a JSONC document and returns plain JSON.
func loadContextFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}
	return jsonc.ToJSON(data), nil
}

// parseTag splits "key=value".
func parseTag(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("tag %q is not key=value", s)
	}
	return key, value, nil
}
