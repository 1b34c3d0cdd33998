// SPDX-License-Identifier: BSD-3-Clause

// Package log is the agent's one entry point for building a logger and
// changing its level at runtime; every other package logs through the
// *slog.Logger this package returns, never constructs its own.
package log
