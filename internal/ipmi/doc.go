// SPDX-License-Identifier: BSD-3-Clause

// Package ipmi implements hardware.Backend by driving a baseboard
// management controller through the ipmitool subprocess, with all
// vendor-specific behavior supplied by a declarative JSON profile.
// Nothing in this package hardcodes a raw command for
// any particular BMC; profile.go/loader.go/merge.go own the document
// shape and inheritance, interpolator.go owns the percent-to-byte-string
// translation, parser.go turns SDR CSV into sensors/fans, and executor.go
// owns the actual subprocess spawns.
package ipmi
