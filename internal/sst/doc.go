// SPDX-License-Identifier: BSD-3-Clause

// Package sst holds the single source of truth for every user-selectable
// parameter value. generated.go is produced by running tools/sstgen on
// ui-options.json — the same document the hub's UI consumes — so agent
// and hub can never drift on what values are legal. Nothing in this
// package reads config or touches hardware; it is closed-set membership
// checks only.
package sst
