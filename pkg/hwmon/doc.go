// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon is the sysfs transport layer: plain file reads/writes,
// directory counting and listing, each wrapped in a goroutine so a
// caller's context deadline is honored even though os.ReadFile/WriteFile
// themselves cannot be canceled, plus globbing and existence/writability
// checks, which take no context and run synchronously. No sensor, fan, or discovery policy
// lives here — see internal/hardware/sysfs.
package hwmon
