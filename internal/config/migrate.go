// SPDX-License-Identifier: BSD-3-Clause

package config

// migrate rewrites the permissive JSON tree before typed decode. It
// returns the rewritten tree and whether any rule fired, so the caller
// knows whether to rewrite the file on disk.
func migrate(raw map[string]any) (map[string]any, bool) {
	changed := false

	hw, ok := raw["hardware"].(map[string]any)
	if !ok {
		hw = map[string]any{}
	}

	for _, obsolete := range []string{"filter_duplicate_sensors", "duplicate_sensor_tolerance", "fan_safety_minimum"} {
		if _, present := hw[obsolete]; present {
			delete(hw, obsolete)
			changed = true
		}
	}

	if _, present := hw["failsafe_speed"]; !present {
		hw["failsafe_speed"] = 70
		changed = true
	}

	raw["hardware"] = hw
	return raw, changed
}
