package config

import (
	"strings"
	"testing"
	"time"

	"tickd/internal/task"
)

func TestParseJSON(t *testing.T) {
	t.Parallel()
	raw := `{
		"connect": "backend:8080",
		"tasks": {
			"init":  {"url": "/init", "frequency": "initialize"},
			"poll":  {"url": "/poll", "frequency": 5, "start-delay": 2},
			"heavy": {"url": "/heavy", "frequency": 60, "dedicated-child": true},
			"bye":   {"url": "/bye", "frequency": "shutdown"}
		}
	}`
	cfg, err := Parse("tickd.json", []byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Connect != "backend:8080" {
		t.Fatalf("connect = %q", cfg.Connect)
	}
	if len(cfg.Tasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(cfg.Tasks))
	}
	poll := cfg.Tasks["poll"]
	if !poll.Frequency.IsPeriodic() || poll.Frequency.Interval() != 5*time.Second {
		t.Fatalf("poll frequency = %v", poll.Frequency)
	}
	if poll.StartDelay != 2 {
		t.Fatalf("poll start-delay = %d", poll.StartDelay)
	}
	if !cfg.Tasks["heavy"].DedicatedChild {
		t.Fatal("heavy not marked dedicated-child")
	}
	if !cfg.Tasks["init"].Frequency.IsInitialize() || !cfg.Tasks["bye"].Frequency.IsShutdown() {
		t.Fatal("special frequencies not decoded")
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	raw := `
connect: backend:8080
watch-config: true
logging:
  level: DEBUG
  console: false
  file:
    enabled: true
    path: /var/log/tickd.log
tasks:
  init:
    url: /init
    frequency: initialize
  poll:
    url: /poll
    frequency: 30
`
	cfg, err := Parse("tickd.yaml", []byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.WatchConfig {
		t.Fatal("watch-config not decoded")
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Logging.ConsoleEnabled() {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if !cfg.Logging.File.Enabled || cfg.Logging.File.Path != "/var/log/tickd.log" {
		t.Fatalf("file sink = %+v", cfg.Logging.File)
	}
	if got := cfg.Tasks["poll"].Frequency.Interval(); got != 30*time.Second {
		t.Fatalf("poll interval = %v", got)
	}
}

func TestConsoleDefaultsOn(t *testing.T) {
	t.Parallel()
	cfg, err := Parse("t.json", []byte(`{"tasks": {}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !cfg.Logging.ConsoleEnabled() {
		t.Fatal("console must default to enabled")
	}
}

func TestParseRejections(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unknown field",
			raw:  `{"tasks": {}, "nope": 1}`,
			want: "nope",
		},
		{
			name: "trailing data",
			raw:  `{"tasks": {}} {}`,
			want: "trailing",
		},
		{
			name: "missing url",
			raw:  `{"tasks": {"a": {"frequency": 5}}}`,
			want: "url is required",
		},
		{
			name: "relative url",
			raw:  `{"tasks": {"a": {"url": "poll", "frequency": 5}}}`,
			want: "must start with /",
		},
		{
			name: "missing frequency",
			raw:  `{"tasks": {"a": {"url": "/a"}}}`,
			want: "frequency is required",
		},
		{
			name: "zero frequency",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": 0}}}`,
			want: "positive",
		},
		{
			name: "negative start-delay",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": 5, "start-delay": -1}}}`,
			want: "non-negative",
		},
		{
			name: "two initialize tasks",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": "initialize"}, "b": {"url": "/b", "frequency": "initialize"}}}`,
			want: "initialize already defined",
		},
		{
			name: "two shutdown tasks",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": "shutdown"}, "b": {"url": "/b", "frequency": "shutdown"}}}`,
			want: "shutdown already defined",
		},
		{
			name: "start-delay on initialize",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": "initialize", "start-delay": 3}}}`,
			want: "only valid for periodic",
		},
		{
			name: "dedicated-child on shutdown",
			raw:  `{"tasks": {"a": {"url": "/a", "frequency": "shutdown", "dedicated-child": true}}}`,
			want: "only valid for periodic",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse("t.json", []byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestSpecsSortedByLabel(t *testing.T) {
	t.Parallel()
	cfg := &Config{Tasks: map[string]TaskConfig{
		"zebra": {URL: "/z", Frequency: task.Every(time.Second)},
		"alpha": {URL: "/a", Frequency: task.Every(time.Second), StartDelay: 7},
	}}

	specs := cfg.Specs()
	if len(specs) != 2 {
		t.Fatalf("specs = %d, want 2", len(specs))
	}
	if specs[0].Label != "alpha" || specs[1].Label != "zebra" {
		t.Fatalf("order = [%s %s]", specs[0].Label, specs[1].Label)
	}
	if specs[0].StartDelay != 7*time.Second {
		t.Fatalf("start delay = %v, want 7s", specs[0].StartDelay)
	}
}
