// SPDX-License-Identifier: BSD-3-Clause

package sst

import (
	"fmt"
	"math"
)

const floatTolerance = 1e-9

// ValidateFloat reports ErrNotInSet (naming field and echoing set) unless
// v is a member of set to within floating point tolerance.
func ValidateFloat(field string, v float64, set []float64) error {
	for _, allowed := range set {
		if math.Abs(v-allowed) < floatTolerance {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%v, permitted: %v", ErrNotInSet, field, v, set)
}

// ValidateInt reports ErrNotInSet unless v is a member of set.
func ValidateInt(field string, v int, set []int) error {
	for _, allowed := range set {
		if v == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%d, permitted: %v", ErrNotInSet, field, v, set)
}

// ValidateString reports ErrNotInSet unless v is a member of set.
func ValidateString(field, v string, set []string) error {
	for _, allowed := range set {
		if v == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q, permitted: %v", ErrNotInSet, field, v, set)
}

// ValidateUpdateInterval validates the agent/hub "update_interval" tunable.
func ValidateUpdateInterval(v float64) error {
	return ValidateFloat("update_interval", v, UpdateIntervalsSeconds)
}

// ValidateFanStep validates the "fan_step_percent" tunable.
func ValidateFanStep(v int) error {
	return ValidateInt("fan_step_percent", v, FanStepsPercent)
}

// ValidateHysteresis validates the "hysteresis_temp" tunable.
func ValidateHysteresis(v float64) error {
	return ValidateFloat("hysteresis_temp", v, HysteresisCelsius)
}

// ValidateEmergencyTemp validates the "emergency_temp" tunable.
func ValidateEmergencyTemp(v float64) error {
	return ValidateFloat("emergency_temp", v, EmergencyTempsCelsius)
}

// ValidateFailsafeSpeed validates the "failsafe_speed" tunable.
func ValidateFailsafeSpeed(v int) error {
	return ValidateInt("failsafe_speed", v, FailsafeSpeedsPercent)
}

// ValidateLogLevel validates the "log_level" tunable. CRITICAL is a legal
// wire value that folds to ERROR internally; it is still
// a member of the set here, the folding happens in pkg/log.ParseLevel.
func ValidateLogLevel(v string) error {
	return ValidateString("log_level", v, LogLevels)
}
