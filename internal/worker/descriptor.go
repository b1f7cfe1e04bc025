package worker

import (
	"fmt"
	"strings"
	"time"
)

// Descriptor is the typed task description handed to a worker process on
// its stdin. Only label, url and frequency travel: no start delay and no
// further isolation recursion.
type Descriptor struct {
	Label        string `json:"label"`
	URL          string `json:"url"`
	EverySeconds int64  `json:"every_seconds"`
	Connect      string `json:"connect"`
	LogLevel     string `json:"log_level,omitempty"`
}

func (d Descriptor) Every() time.Duration {
	return time.Duration(d.EverySeconds) * time.Second
}

func (d Descriptor) Validate() error {
	if d.Label == "" {
		return fmt.Errorf("worker descriptor: label is required")
	}
	if d.URL == "" {
		return fmt.Errorf("worker descriptor: url is required")
	}
	if !strings.HasPrefix(d.URL, "/") {
		return fmt.Errorf("worker descriptor: url must start with /")
	}
	if d.EverySeconds <= 0 {
		return fmt.Errorf("worker descriptor: every_seconds must be positive, got %d", d.EverySeconds)
	}
	if d.Connect == "" {
		return fmt.Errorf("worker descriptor: connect is required")
	}
	return nil
}
