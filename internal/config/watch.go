// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies on external edits to the config file made while the
// daemon runs. It only logs; it never hot-swaps the in-memory config
// out from under a mutator mid-flight. An operator who wants the edit
// applied still sends SIGHUP or restarts.
type Watcher struct {
	path   string
	logger *slog.Logger
}

// NewWatcher builds a Watcher for the config file at path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	return &Watcher{path: path, logger: logOrDefault(logger)}
}

func (w *Watcher) Name() string { return "config-watcher" }

// Run blocks, logging a notice each time the watched file is written or
// renamed, until ctx is cancelled, matching how the rest of this
// agent's subsystems are stopped cooperatively.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.path); err != nil {
		return fmt.Errorf("watching %s: %w", w.path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
				w.logger.Info("config file changed on disk; restart or send SIGHUP to apply", "path", w.path, "op", ev.Op.String())
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
