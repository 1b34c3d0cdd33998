// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"strconv"
	"strings"

	"github.com/Anexgohan/pankha/internal/hardware"
)

// ParseSensors extracts temperature rows from `ipmitool -c sdr list full`
// CSV output.
// A row qualifies when its third (unit) column contains the profile's
// temp_match_token; columns are name,value,unit,status.
func ParseSensors(csv string, parsing Parsing, hardwareName string) []hardware.Sensor {
	var sensors []hardware.Sensor

	for _, line := range strings.Split(csv, "\n") {
		cols := strings.Split(line, ",")
		if len(cols) < 4 {
			continue
		}
		if !strings.Contains(cols[2], parsing.TempMatchToken) {
			continue
		}

		name := strings.TrimSpace(cols[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(cols[1]), 64)
		if err != nil {
			continue
		}

		sensors = append(sensors, hardware.Sensor{
			ID:          name,
			Name:        name,
			Temperature: value,
			Kind:        hardware.SensorKindTemperature,
			ChipLabel:   "ipmi",
			HWName:      hardwareName,
			SourcePath:  "ipmi_sdr",
		})
	}

	return sensors
}

// ParseFans extracts fan rows from the same CSV, keyed on
// fan_match_token. RPM-only rows can't derive a percentage, so
// CurrentSpeed/TargetSpeed are left at 0.
func ParseFans(csv string, parsing Parsing, hasControl bool) []hardware.Fan {
	var fans []hardware.Fan

	for _, line := range strings.Split(csv, "\n") {
		cols := strings.Split(line, ",")
		if len(cols) < 4 {
			continue
		}
		if !strings.Contains(cols[2], parsing.FanMatchToken) {
			continue
		}

		name := strings.TrimSpace(cols[0])
		rpm, err := strconv.Atoi(strings.TrimSpace(cols[1]))
		if err != nil {
			continue
		}

		status := hardware.FanStatusStopped
		if rpm > 0 {
			status = hardware.FanStatusOK
		}

		fans = append(fans, hardware.Fan{
			ID:     name,
			Name:   name,
			RPM:    &rpm,
			Status: status,
			HasPWM: hasControl,
		})
	}

	return fans
}
