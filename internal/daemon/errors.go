// SPDX-License-Identifier: BSD-3-Clause

package daemon

import "errors"

// ErrAlreadyRunning indicates a live process already owns the PID
// file.
var ErrAlreadyRunning = errors.New("daemon already running")
