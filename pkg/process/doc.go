// SPDX-License-Identifier: BSD-3-Clause

// Package process wraps a long-running subsystem (Runner) with panic
// recovery so one panicking subsystem surfaces as an error instead of
// taking down the whole daemon. internal/daemon starts each Runner
// directly; there is no supervision tree.
package process
