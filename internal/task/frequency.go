package task

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the frequency variants.
type Kind uint8

const (
	// KindUnset is the zero value; configs that omit frequency fail validation.
	KindUnset Kind = iota
	// KindPeriodic repeats every fixed interval, indefinitely.
	KindPeriodic
	// KindInitialize runs once at startup (and again on a reinitialize
	// request) and gates the start of all periodic tasks.
	KindInitialize
	// KindShutdown runs once when termination is requested and gates
	// process exit.
	KindShutdown
)

// Frequency is a tagged variant: a positive repeat interval, or one of the
// two one-shot markers. The markers are mutually exclusive with interval
// scheduling.
type Frequency struct {
	kind  Kind
	every time.Duration
}

// Every returns a periodic frequency. d must be positive.
func Every(d time.Duration) Frequency { return Frequency{kind: KindPeriodic, every: d} }

// Initialize returns the initialize one-shot frequency.
func Initialize() Frequency { return Frequency{kind: KindInitialize} }

// Shutdown returns the shutdown one-shot frequency.
func Shutdown() Frequency { return Frequency{kind: KindShutdown} }

func (f Frequency) Kind() Kind           { return f.kind }
func (f Frequency) IsZero() bool         { return f.kind == KindUnset }
func (f Frequency) IsPeriodic() bool     { return f.kind == KindPeriodic }
func (f Frequency) IsInitialize() bool   { return f.kind == KindInitialize }
func (f Frequency) IsShutdown() bool     { return f.kind == KindShutdown }
func (f Frequency) Interval() time.Duration { return f.every }

func (f Frequency) String() string {
	switch f.kind {
	case KindPeriodic:
		return f.every.String()
	case KindInitialize:
		return "initialize"
	case KindShutdown:
		return "shutdown"
	default:
		return "unset"
	}
}

// UnmarshalJSON accepts the config wire forms: a positive integer number of
// seconds, or the strings "initialize" / "shutdown".
func (f *Frequency) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "initialize":
			*f = Initialize()
			return nil
		case "shutdown":
			*f = Shutdown()
			return nil
		}
		return fmt.Errorf("frequency: unknown marker %q (want \"initialize\" or \"shutdown\")", s)
	}

	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("frequency: want a positive integer of seconds, \"initialize\" or \"shutdown\", got %s", string(b))
	}
	if n <= 0 {
		return fmt.Errorf("frequency: interval must be positive, got %d", n)
	}
	*f = Every(time.Duration(n) * time.Second)
	return nil
}
