// SPDX-License-Identifier: BSD-3-Clause

// Package config owns the agent's single on-disk JSON configuration
// document: its typed shape, migration of the permissive JSON tree
// before typed decode, and the validate-then-mutate-then-save pattern
// every dispatcher command and SIGHUP reload uses.
// Every mutator validates against internal/sst before
// touching the in-memory struct, matching the closed-set contract the
// hub UI shares.
package config

import "log/slog"

// HubPlaceholder is the literal placeholder token a fresh install's hub
// URL carries until the operator runs setup.
const HubPlaceholder = "[YOUR_HUB_IP]"

// Agent is the "agent" config group.
type Agent struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	UpdateInterval float64 `json:"update_interval"`
	LogLevel       string  `json:"log_level"`
}

// Backend is the "backend" config group.
type Backend struct {
	ServerURL         string `json:"server_url"`
	ReconnectInterval int    `json:"reconnect_interval_seconds"`
	MaxReconnects     int    `json:"max_reconnect_attempts"`
	ConnectTimeout    int    `json:"connect_timeout_seconds"`
}

// Hardware is the "hardware" config group.
type Hardware struct {
	FanControlEnabled    bool    `json:"fan_control_enabled"`
	SensorMonitorEnabled bool    `json:"sensor_monitoring_enabled"`
	FanStepPercent       int     `json:"fan_step_percent"`
	HysteresisTemp       float64 `json:"hysteresis_temp"`
	EmergencyTemp        float64 `json:"emergency_temp"`
	FailsafeSpeed        int     `json:"failsafe_speed"`
}

// Logging is the "logging" config group.
type Logging struct {
	FileEnabled    bool   `json:"file_enabled"`
	FilePath       string `json:"file_path"`
	RotationSizeMB int    `json:"rotation_size_mb"`
	RetentionDays  int    `json:"retention_days"`
}

// Config is the whole persisted configuration document.
type Config struct {
	Agent    Agent    `json:"agent"`
	Backend  Backend  `json:"backend"`
	Hardware Hardware `json:"hardware"`
	Logging  Logging  `json:"logging"`
}

// Default returns the configuration a fresh install starts from: the
// hub URL placeholder forces setup before the backend will connect
// anywhere.
func Default() Config {
	return Config{
		Agent: Agent{
			Name:           "pankha-agent",
			UpdateInterval: 3,
			LogLevel:       "INFO",
		},
		Backend: Backend{
			ServerURL:         "ws://" + HubPlaceholder + ":8080/ws/agent",
			ReconnectInterval: 5,
			MaxReconnects:     -1,
			ConnectTimeout:    10,
		},
		Hardware: Hardware{
			FanControlEnabled:    true,
			SensorMonitorEnabled: true,
			FanStepPercent:       10,
			HysteresisTemp:       2,
			EmergencyTemp:        85,
			FailsafeSpeed:        70,
		},
		Logging: Logging{
			FileEnabled:    false,
			FilePath:       "pankha.log",
			RotationSizeMB: 10,
			RetentionDays:  7,
		},
	}
}

func logOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
