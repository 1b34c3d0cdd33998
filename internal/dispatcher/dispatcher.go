// SPDX-License-Identifier: BSD-3-Clause

// Package dispatcher implements every inbound message's semantics:
// the command table, the ping/pong keepalive, and the
// "registered" frame's config-apply-plus-marker-cleanup side effect. It
// satisfies internal/wsclient.MessageHandler; wsclient owns transport
// only, dispatcher owns meaning.
package dispatcher

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/Anexgohan/pankha/internal/config"
	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/internal/protocol"
	"github.com/Anexgohan/pankha/pkg/log"
)

// Updater spawns the self-update procedure. Dispatcher
// replies to the selfUpdate command before the update completes, so
// ApplyUpdate is invoked from a goroutine and its error only reaches a
// log line, never the hub.
type Updater interface {
	ApplyUpdate(ctx context.Context, version string) error
}

// UpdateVerifier is notified on every "registered" frame so it can clear
// the update-pending marker once the hub has confirmed the new binary.
type UpdateVerifier interface {
	ConfirmSuccess() error
}

// DiagnosticsProvider re-runs discovery and persists the dump to disk,
// returning the tree to embed in the getDiagnostics response.
type DiagnosticsProvider interface {
	Refresh(ctx context.Context) (hardware.Diagnostics, error)
}

// Dispatcher implements internal/wsclient.MessageHandler.
type Dispatcher struct {
	hw          hardware.Backend
	store       *config.Store
	updater     Updater
	verify      UpdateVerifier
	diagnostics DiagnosticsProvider
	logger      *slog.Logger
}

// New builds a Dispatcher. updater, verify, and diagnostics may be nil:
// selfUpdate and the registered-frame marker cleanup become no-ops, and
// getDiagnostics falls back to an unpersisted hardware dump, so tests
// can exercise the command table without the full dependency set.
func New(hw hardware.Backend, store *config.Store, updater Updater, verify UpdateVerifier, diagnostics DiagnosticsProvider, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{hw: hw, store: store, updater: updater, verify: verify, diagnostics: diagnostics, logger: logger}
}

// HandleMessage satisfies wsclient.MessageHandler.
func (d *Dispatcher) HandleMessage(ctx context.Context, raw []byte) ([]byte, bool) {
	var env protocol.Inbound
	if err := json.Unmarshal(raw, &env); err != nil {
		d.logger.Warn("discarding frame with invalid JSON envelope", "error", err)
		return nil, false
	}

	switch env.Type {
	case "command":
		return d.handleCommand(ctx, env.Data)
	case "ping":
		return d.encode(protocol.Pong{Type: "pong", Timestamp: nowMillis()}), true
	case "registered":
		d.handleRegistered(ctx, env.Configuration)
		return nil, false
	default:
		d.logger.Debug("ignoring frame of unrecognized type", "type", env.Type)
		return nil, false
	}
}

func nowMillis() int64 { return time.Now().UnixMilli() }

func (d *Dispatcher) encode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		d.logger.Error("encoding response failed", "error", err)
		return nil
	}
	return data
}

// handleCommand runs the dispatch table and its two malformed-input
// edge cases: a command with no commandId gets no
// response at all (there is no channel to reply on); every other
// malformed shape gets a descriptive error response.
func (d *Dispatcher) handleCommand(ctx context.Context, data json.RawMessage) ([]byte, bool) {
	var cmd protocol.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		d.logger.Warn("discarding command with malformed envelope", "error", err)
		return nil, false
	}
	if cmd.CommandID == "" {
		d.logger.Warn("discarding command with no commandId")
		return nil, false
	}
	if cmd.Type == "" {
		return d.encode(protocol.NewCommandError(cmd.CommandID, "missing command type", nowMillis())), true
	}

	result, err := d.dispatch(ctx, cmd.Type, cmd.Payload)
	if err != nil {
		return d.encode(protocol.NewCommandError(cmd.CommandID, err.Error(), nowMillis())), true
	}
	return d.encode(protocol.NewCommandResponse(cmd.CommandID, result, nowMillis())), true
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdType string, payload json.RawMessage) (any, error) {
	switch cmdType {
	case "setFanSpeed":
		return d.setFanSpeed(ctx, payload)
	case "emergencyStop":
		return nil, d.hw.EmergencyStop(ctx)
	case "setUpdateInterval":
		return d.setUpdateInterval(payload)
	case "setFanStep":
		return d.setFanStep(payload)
	case "setHysteresis":
		return d.setHysteresis(payload)
	case "setEmergencyTemp":
		return d.setEmergencyTemp(payload)
	case "setFailsafeSpeed":
		return d.setFailsafeSpeed(payload)
	case "setLogLevel":
		return d.setLogLevel(payload)
	case "setEnableFanControl":
		return d.setEnableFanControl(payload)
	case "setAgentName":
		return d.setAgentName(payload)
	case "getDiagnostics":
		if d.diagnostics != nil {
			return d.diagnostics.Refresh(ctx)
		}
		return d.hw.DumpHardwareInfo(ctx)
	case "selfUpdate":
		return d.selfUpdate(ctx, payload)
	case "ping":
		return map[string]bool{"pong": true}, nil
	default:
		return nil, wrapUnknown(cmdType)
	}
}

func wrapUnknown(cmdType string) error {
	return &unknownCommandError{cmdType: cmdType}
}

type unknownCommandError struct{ cmdType string }

func (e *unknownCommandError) Error() string { return "Unknown command: " + e.cmdType }
func (e *unknownCommandError) Unwrap() error { return ErrUnknownCommand }

func decode[T any](payload json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, ErrMalformedPayload
	}
	return v, nil
}

func (d *Dispatcher) setFanSpeed(ctx context.Context, payload json.RawMessage) (any, error) {
	p, err := decode[setFanSpeedPayload](payload)
	if err != nil {
		return nil, err
	}
	if !d.store.Get().Hardware.FanControlEnabled {
		return map[string]string{"status": "fan control is disabled, command ignored"}, nil
	}
	if err := d.hw.SetFanSpeed(ctx, p.FanID, p.Speed); err != nil {
		return nil, err
	}
	return map[string]any{"fanId": p.FanID, "speed": p.Speed}, nil
}

func (d *Dispatcher) setUpdateInterval(payload json.RawMessage) (any, error) {
	p, err := decode[setUpdateIntervalPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetUpdateInterval(p.Interval); err != nil {
		return nil, err
	}
	d.logger.Info("update_interval changed", "value", p.Interval)
	return map[string]float64{"interval": p.Interval}, nil
}

func (d *Dispatcher) setFanStep(payload json.RawMessage) (any, error) {
	p, err := decode[setFanStepPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetFanStep(p.Step); err != nil {
		return nil, err
	}
	return map[string]int{"step": p.Step}, nil
}

func (d *Dispatcher) setHysteresis(payload json.RawMessage) (any, error) {
	p, err := decode[setHysteresisPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetHysteresis(p.Hysteresis); err != nil {
		return nil, err
	}
	return map[string]float64{"hysteresis": p.Hysteresis}, nil
}

func (d *Dispatcher) setEmergencyTemp(payload json.RawMessage) (any, error) {
	p, err := decode[setEmergencyTempPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetEmergencyTemp(p.Temp); err != nil {
		return nil, err
	}
	return map[string]float64{"temp": p.Temp}, nil
}

func (d *Dispatcher) setFailsafeSpeed(payload json.RawMessage) (any, error) {
	p, err := decode[setFailsafeSpeedPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetFailsafeSpeed(p.Speed); err != nil {
		return nil, err
	}
	return map[string]int{"speed": p.Speed}, nil
}

func (d *Dispatcher) setLogLevel(payload json.RawMessage) (any, error) {
	p, err := decode[setLogLevelPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetLogLevel(p.Level); err != nil {
		return nil, err
	}
	log.SetLevel(log.ParseLevel(p.Level))
	return map[string]string{"level": p.Level}, nil
}

func (d *Dispatcher) setEnableFanControl(payload json.RawMessage) (any, error) {
	p, err := decode[setEnableFanControlPayload](payload)
	if err != nil {
		return nil, err
	}
	if err := d.store.SetEnableFanControl(p.Enabled); err != nil {
		return nil, err
	}
	return map[string]bool{"enabled": p.Enabled}, nil
}

func (d *Dispatcher) setAgentName(payload json.RawMessage) (any, error) {
	p, err := decode[setAgentNamePayload](payload)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" || len(name) > 255 {
		return nil, ErrMalformedPayload
	}
	if err := d.store.SetAgentName(name); err != nil {
		return nil, err
	}
	return map[string]string{"name": name}, nil
}

func (d *Dispatcher) selfUpdate(ctx context.Context, payload json.RawMessage) (any, error) {
	p, err := decode[selfUpdatePayload](payload)
	if err != nil {
		return nil, err
	}
	if d.updater != nil {
		go func() {
			if err := d.updater.ApplyUpdate(context.Background(), p.Version); err != nil {
				d.logger.Error("self-update failed", "error", err)
			}
		}()
	}
	return map[string]string{"status": "update started"}, nil
}

// handleRegistered applies the embedded configuration object through the
// same mutators as commands, then confirms update success by clearing
// the pending marker.
func (d *Dispatcher) handleRegistered(ctx context.Context, configuration json.RawMessage) {
	if len(configuration) > 0 {
		var cfg map[string]json.RawMessage
		if err := json.Unmarshal(configuration, &cfg); err != nil {
			d.logger.Warn("discarding unparseable registered.configuration", "error", err)
		} else {
			d.applyConfiguration(cfg)
		}
	}

	if d.verify != nil {
		if err := d.verify.ConfirmSuccess(); err != nil {
			d.logger.Error("confirming self-update success failed", "error", err)
		}
	}
}

func (d *Dispatcher) applyConfiguration(cfg map[string]json.RawMessage) {
	type apply struct {
		key string
		fn  func(json.RawMessage) (any, error)
	}
	applies := []apply{
		{"update_interval", func(r json.RawMessage) (any, error) { return d.setUpdateInterval(wrapKey("interval", r)) }},
		{"fan_step_percent", func(r json.RawMessage) (any, error) { return d.setFanStep(wrapKey("step", r)) }},
		{"hysteresis_temp", func(r json.RawMessage) (any, error) { return d.setHysteresis(wrapKey("hysteresis", r)) }},
		{"emergency_temp", func(r json.RawMessage) (any, error) { return d.setEmergencyTemp(wrapKey("temp", r)) }},
		{"failsafe_speed", func(r json.RawMessage) (any, error) { return d.setFailsafeSpeed(wrapKey("speed", r)) }},
		{"log_level", func(r json.RawMessage) (any, error) { return d.setLogLevel(wrapKey("level", r)) }},
		{"fan_control_enabled", func(r json.RawMessage) (any, error) { return d.setEnableFanControl(wrapKey("enabled", r)) }},
		{"name", func(r json.RawMessage) (any, error) { return d.setAgentName(wrapKey("name", r)) }},
	}
	for _, a := range applies {
		raw, ok := cfg[a.key]
		if !ok {
			continue
		}
		if _, err := a.fn(raw); err != nil {
			d.logger.Warn("applying registered configuration key failed", "key", a.key, "error", err)
		}
	}
}

// wrapKey re-wraps a bare JSON value under the field name the
// corresponding setter's payload struct expects, so the registered
// frame's flat configuration object can reuse the command handlers
// unchanged.
func wrapKey(field string, value json.RawMessage) json.RawMessage {
	out, err := json.Marshal(map[string]json.RawMessage{field: value})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return out
}
