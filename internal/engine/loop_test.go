package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunExecutesPostedInOrder(t *testing.T) {
	t.Parallel()
	l := New()

	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Post(func() { l.Exit() })

	reason, err := l.Run(context.Background())
	if reason != StopShutdown || err != nil {
		t.Fatalf("Run = (%v, %v), want (shutdown, nil)", reason, err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("callback order = %v", got)
	}
}

func TestExitStopsBeforeNextCallback(t *testing.T) {
	t.Parallel()
	l := New()

	ran := false
	l.Post(func() { l.Exit() })
	l.Post(func() { ran = true })

	if reason, _ := l.Run(context.Background()); reason != StopShutdown {
		t.Fatalf("reason = %v, want shutdown", reason)
	}
	if ran {
		t.Fatal("callback ran after Exit")
	}
}

func TestFirstStopWins(t *testing.T) {
	t.Parallel()
	l := New()

	boom := errors.New("boom")
	l.Post(func() {
		l.Fatal(boom)
		l.Exit() // ignored
	})

	reason, err := l.Run(context.Background())
	if reason != StopFatal {
		t.Fatalf("reason = %v, want fatal", reason)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if reason.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", reason.ExitCode())
	}
}

func TestContextCancelStopsLoop(t *testing.T) {
	t.Parallel()
	l := New()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var reason StopReason
	go func() {
		reason, _ = l.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on context cancel")
	}
	if reason != StopContext {
		t.Fatalf("reason = %v, want context", reason)
	}
	if reason.ExitCode() != 0 {
		t.Fatalf("exit code = %d, want 0", reason.ExitCode())
	}
}

func TestPostAfterStopIsDropped(t *testing.T) {
	t.Parallel()
	l := New()
	l.Exit()

	done := make(chan struct{})
	go func() {
		l.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after stop")
	}
}
