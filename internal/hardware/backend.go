// SPDX-License-Identifier: BSD-3-Clause

// Package hardware defines the capability interface shared by the sysfs and
// IPMI backends: one contract for discovery, telemetry,
// fan control, emergency stop, cache invalidation, and diagnostics. Nothing
// in this package knows which backend is active; internal/hardware/sysfs
// and internal/ipmi each implement Backend independently.
package hardware

import "context"

// Backend is implemented once per hardware access method. Every method is
// fallible; callers (the telemetry loop, the dispatcher, the failsafe
// controller) treat a returned error as "this cycle produced nothing
// useful", never as fatal, except where a method's doc says otherwise.
type Backend interface {
	// DiscoverSensors returns every currently known temperature sensor.
	DiscoverSensors(ctx context.Context) ([]Sensor, error)
	// DiscoverFans returns every currently known fan.
	DiscoverFans(ctx context.Context) ([]Fan, error)
	// GetSystemHealth summarizes the most recent discovery.
	GetSystemHealth(ctx context.Context) (SystemHealth, error)
	// SetFanSpeed commands a fan to percent (0-100). Implementations
	// dedupe identical writes and rate-limit per fan.
	SetFanSpeed(ctx context.Context, fanID string, percent int) error
	// EmergencyStop drives every known fan to 100%, or equivalent backend
	// behavior (IPMI: reset_to_factory). Best effort: partial failure
	// still reports overall success.
	EmergencyStop(ctx context.Context) error
	// InvalidateCache discards any in-memory discovery cache, forcing the
	// next Discover* call onto the full (non-fast) path.
	InvalidateCache(ctx context.Context)
	// LastDiscoveryFromCache reports whether the most recent Discover*
	// call was satisfied from cache.
	LastDiscoveryFromCache() bool
	// DumpHardwareInfo produces the full diagnostic tree.
	DumpHardwareInfo(ctx context.Context) (Diagnostics, error)
	// Name identifies the backend ("sysfs" or "ipmi") for telemetry and
	// diagnostics.
	Name() string
}
