// SPDX-License-Identifier: BSD-3-Clause

package process

import (
	"context"
	"fmt"
)

// Runner is one long-running subsystem of the agent (the WebSocket
// client, the failsafe poller, the config watcher, ...). Run blocks until
// ctx is cancelled or the subsystem fails on its own.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// Supervise runs r with panic recovery, converting a panic into an
// error that names the runner rather than crashing the whole daemon.
func Supervise(ctx context.Context, r Runner) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrServicePanic, r.Name(), rec)
		}
	}()

	return r.Run(ctx)
}
