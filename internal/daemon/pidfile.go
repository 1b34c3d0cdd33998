// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

// Package daemon owns the PID-file lifecycle and the top-level signal
// loop that drives graceful shutdown and config hot-reload.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Anexgohan/pankha/pkg/file"
)

// PIDFile guards the well-known PID path at /run/<name>/<name>.pid.
type PIDFile struct {
	path string
}

// NewPIDFile wraps path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// CheckStale inspects any existing PID file: a live PID (signal 0
// succeeds) means another instance is running and this call fails with
// ErrAlreadyRunning; a dead or malformed entry is removed silently.
func (p *PIDFile) CheckStale() error {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return os.Remove(p.path)
	}

	if err := syscall.Kill(pid, 0); err != nil {
		return os.Remove(p.path)
	}
	return fmt.Errorf("%w: pid %d", ErrAlreadyRunning, pid)
}

// Write records the current process's PID, creating the containing
// directory if needed and overwriting any stale leftover CheckStale
// already cleared.
func (p *PIDFile) Write() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("creating pid directory: %w", err)
	}
	return file.AtomicUpdateFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// RemoveIfOwned deletes the PID file only if it still names this
// process, so a late-dying old instance cannot wipe a newly started
// one's PID file.
func (p *PIDFile) RemoveIfOwned() error {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		return nil
	}
	return os.Remove(p.path)
}

// ReadPID returns the PID recorded at p.path, for CLI subcommands (stop,
// --log-level routing) that signal an already-running daemon rather than
// owning its lifecycle themselves.
func (p *PIDFile) ReadPID() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, fmt.Errorf("reading pid file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("malformed pid file %s: %w", p.path, err)
	}
	return pid, nil
}

// SignalReload sends SIGHUP to pid, the same signal Supervisor.Run
// handles as a config hot-reload.
func SignalReload(pid int) error {
	return syscall.Kill(pid, syscall.SIGHUP)
}

// SignalShutdown sends SIGTERM to pid, requesting graceful shutdown.
func SignalShutdown(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// StopProcess requests graceful shutdown and escalates to SIGKILL if
// pid is still alive once timeout elapses.
func StopProcess(pid int, timeout time.Duration) error {
	if err := SignalShutdown(pid); err != nil {
		return fmt.Errorf("signaling pid %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); err != nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return syscall.Kill(pid, syscall.SIGKILL)
}
