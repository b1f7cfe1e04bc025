// Package worker isolates a single periodic task into its own process.
//
// The worker is this same binary in -worker mode, running an independent
// single-task engine. The parent captures its stdout/stderr into the log
// stream and ties the child's lifetime to its own.
package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"tickd/pkg/logx"
)

// Manager spawns and tracks isolated task workers.
type Manager struct {
	ctx      context.Context
	connect  string
	logLevel string
	log      logx.Logger
}

// NewManager creates a manager whose children are killed when ctx is
// canceled (on Linux additionally when the parent dies, via PDEATHSIG).
func NewManager(ctx context.Context, connect, logLevel string, log logx.Logger) *Manager {
	return &Manager{
		ctx:      ctx,
		connect:  connect,
		logLevel: logLevel,
		log:      log.With(logx.String("comp", "worker")),
	}
}

// Spawn launches one worker for the given task. The error covers the spawn
// itself; the caller decides process-wide policy (spawn failure is fatal).
func (m *Manager) Spawn(label, url string, every time.Duration) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	desc := Descriptor{
		Label:        label,
		URL:          url,
		EverySeconds: int64(every / time.Second),
		Connect:      m.connect,
		LogLevel:     m.logLevel,
	}
	if err := desc.Validate(); err != nil {
		return err
	}

	cmd := exec.CommandContext(m.ctx, exe, "-worker")
	setSysProcAttr(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}

	log := m.log.With(logx.String("task", label), logx.Int("pid", cmd.Process.Pid))
	log.Info("worker started", logx.Duration("every", every))

	// The descriptor travels over stdin, not argv.
	if err := json.NewEncoder(stdin).Encode(desc); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("send descriptor: %w", err)
	}
	_ = stdin.Close()

	var fwd sync.WaitGroup
	fwd.Add(2)
	go func() {
		defer fwd.Done()
		forwardLines(stdout, func(line string) { log.Debug(line) })
	}()
	go func() {
		defer fwd.Done()
		forwardLines(stderr, func(line string) { log.Error(line) })
	}()

	go func() {
		// Wait closes the pipes, so it must not run until forwarding drained them.
		fwd.Wait()
		err := cmd.Wait()
		if m.ctx.Err() != nil {
			log.Debug("worker stopped", logx.Err(err))
			return
		}
		log.Error("worker exited unexpectedly", logx.Err(err))
	}()

	return nil
}

// forwardLines streams r line by line into emit until EOF.
func forwardLines(r io.Reader, emit func(string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line != "" {
			emit(line)
		}
	}
}
