// SPDX-License-Identifier: BSD-3-Clause

// Package state wraps github.com/qmuntal/stateless with a bounded-deadline
// Fire call and typed entry/exit hooks. It is deliberately single-machine:
// callers that need several machines just construct several FSMs.
package state
