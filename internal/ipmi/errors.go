// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"errors"
	"fmt"

	"github.com/Anexgohan/pankha/internal/hardware"
)

var (
	// ErrProfileRead indicates the profile file (or an extends target)
	// could not be read.
	ErrProfileRead = errors.New("ipmi profile read failure")
	// ErrProfileParse indicates the profile JSON failed to decode.
	ErrProfileParse = errors.New("ipmi profile parse failure")
	// ErrProfileMissingIPMI indicates a profile (after extends resolution)
	// has no protocols.ipmi section.
	ErrProfileMissingIPMI = errors.New("ipmi profile missing protocols.ipmi")
	// ErrProfileUnsafeReset indicates a profile's reset_to_factory list
	// contains no command marked critical.
	ErrProfileUnsafeReset = errors.New("ipmi profile reset_to_factory has no critical command")
	// ErrNoFanZone indicates a set_fan_speed call matched no configured
	// fan zone in the loaded profile. It wraps hardware.ErrUnknownFan so
	// callers can treat both backends' miss cases uniformly.
	ErrNoFanZone = fmt.Errorf("%w: no ipmi fan zone matches id", hardware.ErrUnknownFan)
	// ErrIpmitoolFailed indicates the ipmitool subprocess exited non-zero.
	ErrIpmitoolFailed = errors.New("ipmitool command failed")
)
