// SPDX-License-Identifier: BSD-3-Clause

// Package sysfs implements hardware.Backend against the Linux kernel's
// hwmon sysfs tree. It owns the discovery cache, the hot-plug counter, and
// the per-fan write-dedup/rate-limit state that must survive
// rediscovery.
package sysfs
