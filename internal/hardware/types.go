// SPDX-License-Identifier: BSD-3-Clause

package hardware

import "time"

// SensorKind classifies a Sensor by the subsystem it was discovered under.
type SensorKind string

const (
	SensorKindCPU         SensorKind = "cpu"
	SensorKindNVMe        SensorKind = "nvme"
	SensorKindMotherboard SensorKind = "motherboard"
	SensorKindACPI        SensorKind = "acpi"
	SensorKindTemperature SensorKind = "temperature"
	SensorKindOther       SensorKind = "other"
)

// Sensor is a single discovered temperature source. Identity is ID, stable
// per chip+label across discovery cycles; Sensor is otherwise immutable
// within one cycle.
type Sensor struct {
	ID          string
	Name        string
	Temperature float64
	Kind        SensorKind
	MaxTemp     *float64
	CritTemp    *float64
	ChipLabel   string
	HWName      string
	SourcePath  string
}

// FanStatus reports a Fan's operational state as last observed.
type FanStatus string

const (
	FanStatusOK      FanStatus = "ok"
	FanStatusStopped FanStatus = "stopped"
	FanStatusError   FanStatus = "error"
)

// Fan is a single discovered PWM-controllable (or read-only) fan. Identity
// is ID. TargetSpeed is the most recent commanded value; CurrentSpeed is
// the most recent readback.
type Fan struct {
	ID           string
	Name         string
	RPM          *int
	CurrentSpeed int
	TargetSpeed  int
	Status       FanStatus
	HasPWM       bool
	ControlPath  string
}

// SystemHealth is the host-level complement to sensors/fans in every
// telemetry frame. AgentUptime is computed from process start for both
// backends, not from a backend-specific clock.
type SystemHealth struct {
	CPUUsagePercent    float64
	MemoryUsagePercent float64
	AgentUptimeSeconds float64
}

// PWMEnableMode mirrors the kernel's pwm<N>_enable convention.
type PWMEnableMode int

const (
	PWMDisabled PWMEnableMode = iota
	PWMManual
	PWMAutomatic
)

// PWMDiagnostic is the per-control detail of the diagnostic dump:
// write permission, enable mode, percentage readback.
type PWMDiagnostic struct {
	ControlPath string
	Writable    bool
	EnableMode  PWMEnableMode
	Percent     int
}

// ChipDiagnostic describes one discovered chip (hwmon device or IPMI BMC)
// for the diagnostic dump.
type ChipDiagnostic struct {
	Name    string
	Sensors []Sensor
	PWMs    []PWMDiagnostic
}

// Diagnostics is the full structured description persisted to
// hardware-info.json and returned by getDiagnostics.
type Diagnostics struct {
	Backend     string
	GeneratedAt time.Time
	Chips       []ChipDiagnostic
}
