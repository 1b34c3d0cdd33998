// SPDX-License-Identifier: BSD-3-Clause

// Package file provides atomic file operations built on
// temp-file-plus-rename: config saves, the PID file, the update marker,
// and the diagnostic dump all go through AtomicCreateFile /
// AtomicUpdateFile so a crash mid-write never leaves a half-written
// file on disk in their place.
package file
