// SPDX-License-Identifier: BSD-3-Clause

// Package protocol defines the JSON wire shapes exchanged over the
// WebSocket connection to the hub. Every frame is a text
// frame carrying one JSON object with a top-level "type" field; this
// package owns only the shapes, never the transport (internal/wsclient)
// or the semantics of any one message kind (internal/dispatcher).
package protocol

import "encoding/json"

// Inbound is the generic envelope every frame the agent receives is
// decoded into first, so the "type" field can select further decoding.
type Inbound struct {
	Type          string          `json:"type"`
	Data          json.RawMessage `json:"data,omitempty"`
	Configuration json.RawMessage `json:"configuration,omitempty"`
}

// Command is the nested "data" object of an inbound {"type":"command"}
// frame.
type Command struct {
	Type      string          `json:"type"`
	CommandID string          `json:"commandId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// CommandResponse answers every well-formed command.
type CommandResponse struct {
	Type      string `json:"type"`
	CommandID string `json:"commandId"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewCommandResponse builds a successful response.
func NewCommandResponse(commandID string, data any, timestamp int64) CommandResponse {
	return CommandResponse{Type: "commandResponse", CommandID: commandID, Success: true, Data: data, Timestamp: timestamp}
}

// NewCommandError builds a failed response.
func NewCommandError(commandID string, errMsg string, timestamp int64) CommandResponse {
	return CommandResponse{Type: "commandResponse", CommandID: commandID, Success: false, Error: errMsg, Timestamp: timestamp}
}

// Capabilities is embedded in the register frame.
type Capabilities struct {
	Sensors    []any `json:"sensors"`
	Fans       []any `json:"fans"`
	FanControl bool  `json:"fan_control"`
}

// Register is sent once per connection on entering the online state.
type Register struct {
	Type           string       `json:"type"`
	AgentID        string       `json:"agentId"`
	Name           string       `json:"name"`
	AgentVersion   string       `json:"agent_version"`
	Platform       string       `json:"platform"`
	UpdateInterval float64      `json:"update_interval"`
	FanStepPercent int          `json:"fan_step_percent"`
	HysteresisTemp float64      `json:"hysteresis_temp"`
	EmergencyTemp  float64      `json:"emergency_temp"`
	FailsafeSpeed  int          `json:"failsafe_speed"`
	LogLevel       string       `json:"log_level"`
	Capabilities   Capabilities `json:"capabilities"`
}

// Data is the per-tick telemetry frame.
type Data struct {
	Type         string `json:"type"`
	AgentID      string `json:"agentId"`
	TimestampMs  int64  `json:"timestamp"`
	Sensors      any    `json:"sensors"`
	Fans         any    `json:"fans"`
	SystemHealth any    `json:"systemHealth"`
}

// Pong answers an inbound {"type":"ping"} application-level message.
type Pong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}
