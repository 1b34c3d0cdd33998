// SPDX-License-Identifier: BSD-3-Clause

// Package id generates the agent's persistent identity: a UUID written once
// to a small file under the data directory and reused across restarts,
// backed by the atomic-write guarantees of pkg/file.
package id
