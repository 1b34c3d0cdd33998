// SPDX-License-Identifier: BSD-3-Clause

package hardware

import "errors"

var (
	// ErrUnknownFan indicates a set_fan_speed/command target that matches
	// no discovered or configured fan.
	ErrUnknownFan = errors.New("unknown fan")
	// ErrNoHwmonTree indicates the sysfs backend found no hwmon root on
	// this host.
	ErrNoHwmonTree = errors.New("no hwmon tree present")
	// ErrProfileNotLoaded indicates an IPMI backend call before a BMC
	// profile has been loaded.
	ErrProfileNotLoaded = errors.New("no BMC profile loaded")
	// ErrCriticalInitFailed indicates a critical: true initialization
	// command failed, making the IPMI backend refuse to initialize.
	ErrCriticalInitFailed = errors.New("critical initialization command failed")
)
