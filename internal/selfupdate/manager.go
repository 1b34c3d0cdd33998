// SPDX-License-Identifier: BSD-3-Clause

// Package selfupdate implements the download/verify/swap/rollback state
// machine: an agent running build A receives a
// selfUpdate command, downloads and sanity-checks build B, swaps
// binaries atomically, and either has the hub confirm success (clearing
// the marker) or, on a suspected failure, has the next boot roll back to
// build A automatically.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Anexgohan/pankha/internal/buildinfo"
)

const minArtifactSize = 1 << 20 // 1 MB

// downloader fetches a binary artifact and sanity-checks it. The
// production implementation shells out to curl and to the artifact
// itself; tests substitute a fake so no
// subprocess is spawned.
type downloader interface {
	Download(ctx context.Context, url, destPath string) error
	CheckVersion(ctx context.Context, binaryPath string) error
}

var _ downloader = (*curlDownloader)(nil)

type curlDownloader struct{}

func (curlDownloader) Download(ctx context.Context, url, destPath string) error {
	cmd := exec.CommandContext(ctx, "curl", "-fsSL", "-o", destPath, url)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	return nil
}

func (curlDownloader) CheckVersion(ctx context.Context, binaryPath string) error {
	cmd := exec.CommandContext(ctx, binaryPath, "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactFailedVersionCheck, err)
	}
	return nil
}

// Restarter hands control to the new binary. Linux
// service-managed installs spawn a restart and exit; manual runs
// replace the process image (exec, not fork) so the PID survives.
type Restarter interface {
	RestartViaServiceManager(ctx context.Context, serviceName string) error
	// Spawn starts path detached, for the fallback when exec-replace
	// itself failed.
	Spawn(path string, args []string) error
	// Exit terminates the current process with code, for the
	// service-managed restart and spawn-and-exit paths.
	Exit(code int)
	Reexecer
}

// Manager implements internal/dispatcher.Updater.
type Manager struct {
	binaryPath     string
	runningVersion string
	hubURL         func() string
	managedService string // empty means "run manually, exec-replace"

	dl        downloader
	restarter Restarter
	logger    *slog.Logger
}

// New builds a Manager. managedService names the systemd unit to restart
// when non-empty; leave it empty for a manually run agent.
func New(binaryPath, runningVersion string, hubURL func() string, managedService string, restarter Restarter, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		binaryPath:     binaryPath,
		runningVersion: runningVersion,
		hubURL:         hubURL,
		managedService: managedService,
		dl:             curlDownloader{},
		restarter:      restarter,
		logger:         logger,
	}
}

// ApplyUpdate runs the full update procedure: download, sanity checks,
// atomic swap, marker, restart. It is invoked from a goroutine by the
// dispatcher, which has already replied to the selfUpdate command by
// the time this runs.
func (m *Manager) ApplyUpdate(ctx context.Context, version string) error {
	if version != "" && version == m.runningVersion {
		m.logger.Info("self-update requested for running version, reinstalling", "version", version)
	} else if version != "" {
		m.logger.Info("self-update requested", "from", m.runningVersion, "to", version)
	}

	url, err := m.deployURL()
	if err != nil {
		return err
	}

	newPath := m.binaryPath + ".new"
	defer os.Remove(newPath)

	if err := m.dl.Download(ctx, url, newPath); err != nil {
		return err
	}
	if err := os.Chmod(newPath, 0o755); err != nil {
		return fmt.Errorf("%w: marking artifact executable: %w", ErrDownloadFailed, err)
	}

	info, err := os.Stat(newPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArtifactTooSmall, err)
	}
	if info.Size() < minArtifactSize {
		return fmt.Errorf("%w: %d bytes", ErrArtifactTooSmall, info.Size())
	}

	if err := m.dl.CheckVersion(ctx, newPath); err != nil {
		if errors.Is(err, ErrArtifactFailedVersionCheck) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrArtifactFailedVersionCheck, err)
	}

	if err := m.swap(newPath); err != nil {
		return err
	}

	dir := filepath.Dir(m.binaryPath)
	if err := writeMarker(markerPath(dir), marker{From: m.runningVersion, To: version}); err != nil {
		return err
	}

	return m.restart(ctx)
}

// deployURL derives the download URL from the hub URL: replace the
// WebSocket scheme with HTTP, strip the trailing WebSocket path, append
// the per-architecture deploy endpoint.
func (m *Manager) deployURL() (string, error) {
	hub := m.hubURL()
	scheme, rest, ok := strings.Cut(hub, "://")
	if !ok {
		return "", fmt.Errorf("%w: malformed hub url %q", ErrDownloadFailed, hub)
	}
	httpScheme := "http"
	if scheme == "wss" {
		httpScheme = "https"
	}

	host, _, _ := strings.Cut(rest, "/")
	return fmt.Sprintf("%s://%s/api/deploy/binaries/%s", httpScheme, host, buildinfo.Architecture()), nil
}

// swap renames running->'.old', then new->running; on the second
// rename's failure, undo the first.
func (m *Manager) swap(newPath string) error {
	oldPath := m.binaryPath + ".old"

	if err := os.Rename(m.binaryPath, oldPath); err != nil {
		return fmt.Errorf("%w: %w", ErrSwapFailed, err)
	}
	if err := os.Rename(newPath, m.binaryPath); err != nil {
		if restoreErr := os.Rename(oldPath, m.binaryPath); restoreErr != nil {
			return fmt.Errorf("%w: swap failed and restore failed: %w", ErrSwapFailed, restoreErr)
		}
		return fmt.Errorf("%w: %w", ErrSwapFailed, err)
	}
	return nil
}

// restart hands control to the new binary: service-managed installs
// spawn a restart and exit; manual runs replace the process image, and
// only fall back to spawn-and-exit if the exec syscall itself failed.
func (m *Manager) restart(ctx context.Context) error {
	if m.managedService != "" {
		if err := m.restarter.RestartViaServiceManager(ctx, m.managedService); err != nil {
			return fmt.Errorf("%w: %w", ErrSwapFailed, err)
		}
		m.restarter.Exit(0)
		return nil
	}

	if err := m.restarter.Reexec(m.binaryPath, os.Args, os.Environ()); err != nil {
		m.logger.Error("exec-replace failed, falling back to spawn-and-exit", "error", err)
		if spawnErr := m.restarter.Spawn(m.binaryPath, os.Args[1:]); spawnErr != nil {
			return fmt.Errorf("%w: %w", ErrSwapFailed, spawnErr)
		}
		m.restarter.Exit(0)
	}
	return nil
}
