// SPDX-License-Identifier: BSD-3-Clause

package selfupdate

import (
	"fmt"
	"log/slog"
	"os"
)

// Reexecer replaces the current process image, preserving the PID so
// any watcher sees the same process survive. The production
// implementation wraps golang.org/x/sys/unix.Exec; tests substitute a
// fake that just records the call, since actually exec-ing would replace
// the test binary itself.
type Reexecer interface {
	Reexec(path string, args []string, env []string) error
}

// VerifyOnStartup runs the post-update verification protocol. Call it
// once, early, from the new binary's own startup path — never from a
// supervisor.
//
// No marker present: nothing to do, ordinary startup.
// Marker present, not yet booted=true: this is the first boot of the
// update; mark it booted and continue.
// Marker present and already booted=true: the previous boot never
// reached the "registered" frame that would have cleared the marker.
// Roll back: restore .old over the current binary, delete the marker,
// and re-exec into the restored binary.
func VerifyOnStartup(dir, binaryPath string, reexec Reexecer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	path := markerPath(dir)
	m, err := readMarker(path)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}

	oldPath := binaryPath + ".old"
	if _, err := os.Stat(oldPath); err != nil {
		logger.Warn("update marker present but no .old backup found, discarding marker", "path", path)
		return removeMarker(path)
	}

	if !m.Booted {
		m.Booted = true
		logger.Info("first boot of updated binary, confirming via marker", "from", m.From, "to", m.To)
		return writeMarker(path, *m)
	}

	logger.Error("update never confirmed by hub, rolling back", "from", m.From, "to", m.To)
	if err := os.Rename(oldPath, binaryPath); err != nil {
		return fmt.Errorf("%w: %w", ErrRollbackFailed, err)
	}
	if err := removeMarker(path); err != nil {
		return err
	}
	if err := reexec.Reexec(binaryPath, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("%w: re-exec after rollback: %w", ErrRollbackFailed, err)
	}
	return nil
}

// ConfirmSuccess finalizes a verified update: it satisfies
// internal/dispatcher.UpdateVerifier and is
// called on every "registered" frame. If no marker is present this is a
// no-op; that is the overwhelmingly common case (no update in flight).
type ConfirmSuccess struct {
	dir        string
	binaryPath string
	logger     *slog.Logger
}

// NewConfirmSuccess builds the dispatcher-facing confirmation hook.
func NewConfirmSuccess(dir, binaryPath string, logger *slog.Logger) *ConfirmSuccess {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfirmSuccess{dir: dir, binaryPath: binaryPath, logger: logger}
}

func (c *ConfirmSuccess) ConfirmSuccess() error {
	path := markerPath(c.dir)
	m, err := readMarker(path)
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}

	c.logger.Info("hub confirmed registration, clearing update marker", "from", m.From, "to", m.To)
	if err := removeMarker(path); err != nil {
		return err
	}
	oldPath := c.binaryPath + ".old"
	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %w", ErrMarkerIO, err)
	}
	return nil
}
