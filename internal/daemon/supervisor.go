// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package daemon

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Anexgohan/pankha/pkg/process"
)

// ReloadFunc re-reads the on-disk config and hot-applies only the log
// level. SIGHUP triggers it; no other state changes on reload.
type ReloadFunc func() error

// Supervisor runs a fixed set of subsystems concurrently under one
// cancellable context and owns the process-wide signal loop: Ctrl-C and
// SIGTERM both shut everything down, SIGHUP reloads.
type Supervisor struct {
	runners []process.Runner
	reload  ReloadFunc
	logger  *slog.Logger
}

// New builds a Supervisor over the given runners. reload may be nil if
// the process has no config to hot-reload.
func New(logger *slog.Logger, reload ReloadFunc, runners ...process.Runner) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{runners: runners, reload: reload, logger: logger}
}

// Run blocks until every runner has exited, either because ctx was
// cancelled by the caller or because a shutdown signal arrived. The
// first non-nil, non-context error from any runner is returned.
func (s *Supervisor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go s.handleSignals(ctx, sigCh, cancel)

	errCh := make(chan error, len(s.runners))
	var wg sync.WaitGroup
	for _, r := range s.runners {
		wg.Add(1)
		go func(r process.Runner) {
			defer wg.Done()
			if err := process.Supervise(ctx, r); err != nil && ctx.Err() == nil {
				errCh <- err
			}
		}(r)
	}

	wg.Wait()
	close(errCh)

	var firstErr error
	for err := range errCh {
		s.logger.Error("subsystem exited with error", "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Supervisor) handleSignals(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				s.logger.Info("received SIGHUP, reloading config")
				if s.reload != nil {
					if err := s.reload(); err != nil {
						s.logger.Error("config reload failed", "error", err)
					}
				}
			default:
				// os.Interrupt (SIGINT) and SIGTERM are handled
				// identically: graceful shutdown.
				s.logger.Info("received shutdown signal", "signal", sig)
				cancel()
				return
			}
		}
	}
}
