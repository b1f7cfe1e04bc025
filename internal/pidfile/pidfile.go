// Package pidfile writes and removes the runner's PID file.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Write records the current process id at path, creating parent directories
// as needed. An existing file is overwritten: a stale PID file from a
// crashed run must not block a restart.
func Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pidfile: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return fmt.Errorf("pidfile: %w", err)
	}
	return nil
}

// Remove deletes the PID file. A missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pidfile: %w", err)
	}
	return nil
}
