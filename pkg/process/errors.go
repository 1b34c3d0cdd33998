// SPDX-License-Identifier: BSD-3-Clause

package process

import "errors"

var (
	// ErrServicePanic indicates a Runner panicked during execution.
	ErrServicePanic = errors.New("subsystem panicked during execution")
)
