// Package config loads and validates the runner configuration.
//
// YAML and JSON are both accepted (YAML is coerced to JSON so one strict
// decoder handles both). The config is loaded once at startup; a change to
// the file triggers a reinitialize request, not a reload.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"tickd/internal/task"
)

type Config struct {
	// Connect is the target host:port. The -connect flag overrides it.
	Connect string `json:"connect,omitempty"`

	// WatchConfig publishes a reinitialize request whenever the config file
	// changes on disk. Off by default.
	WatchConfig bool `json:"watch-config,omitempty"`

	Logging LoggingConfig `json:"logging,omitempty"`

	// Tasks maps a unique label to its definition.
	Tasks map[string]TaskConfig `json:"tasks"`
}

type TaskConfig struct {
	// URL is the path requested at the connect target.
	URL string `json:"url"`

	// Frequency is a positive integer of seconds, "initialize" or "shutdown".
	Frequency task.Frequency `json:"frequency"`

	// StartDelay defers the first periodic run by this many seconds.
	// Only valid for periodic tasks.
	StartDelay int `json:"start-delay,omitempty"`

	// DedicatedChild isolates this periodic task into its own worker process.
	DedicatedChild bool `json:"dedicated-child,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"`

	// Console defaults to true when omitted.
	Console *bool `json:"console,omitempty"`

	File FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// ConsoleEnabled resolves the Console default.
func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

// Load reads, decodes and validates the config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(path, b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data (JSON, or YAML when path has a .yaml/.yml extension)
// strictly: unknown fields and trailing tokens are rejected.
func Parse(path string, data []byte) (*Config, error) {
	jb, err := jsonBody(path, data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the structural rules before any task is constructed:
// required fields, non-negative delays, and at most one initialize and one
// shutdown task.
func (c *Config) Validate() error {
	var haveInit, haveShut string
	for label, tc := range c.Tasks {
		if label == "" {
			return fmt.Errorf("task with empty label")
		}
		if tc.URL == "" {
			return fmt.Errorf("task %q: url is required", label)
		}
		// The invoker concatenates host:port and url; a relative url would
		// only surface as an unreachable-target fatal one tick in.
		if !strings.HasPrefix(tc.URL, "/") {
			return fmt.Errorf("task %q: url must start with /", label)
		}
		if tc.Frequency.IsZero() {
			return fmt.Errorf("task %q: frequency is required", label)
		}
		if tc.StartDelay < 0 {
			return fmt.Errorf("task %q: start-delay must be non-negative", label)
		}
		if !tc.Frequency.IsPeriodic() {
			if tc.StartDelay != 0 {
				return fmt.Errorf("task %q: start-delay is only valid for periodic tasks", label)
			}
			if tc.DedicatedChild {
				return fmt.Errorf("task %q: dedicated-child is only valid for periodic tasks", label)
			}
		}
		switch {
		case tc.Frequency.IsInitialize():
			if haveInit != "" {
				return fmt.Errorf("task %q: initialize already defined by %q", label, haveInit)
			}
			haveInit = label
		case tc.Frequency.IsShutdown():
			if haveShut != "" {
				return fmt.Errorf("task %q: shutdown already defined by %q", label, haveShut)
			}
			haveShut = label
		}
	}
	return nil
}

// Specs converts the task map into construction specs, sorted by label for
// deterministic wiring.
func (c *Config) Specs() []task.Spec {
	labels := make([]string, 0, len(c.Tasks))
	for label := range c.Tasks {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	specs := make([]task.Spec, 0, len(labels))
	for _, label := range labels {
		tc := c.Tasks[label]
		specs = append(specs, task.Spec{
			Label:          label,
			URL:            tc.URL,
			Frequency:      tc.Frequency,
			StartDelay:     time.Duration(tc.StartDelay) * time.Second,
			DedicatedChild: tc.DedicatedChild,
		})
	}
	return specs
}
