// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry builds the two frames wsclient sends unprompted —
// the once-per-connection registration and the per-tick data frame
// — and persists the diagnostic dump to
// hardware-info.json.
// It satisfies internal/wsclient.RegistrationProvider and
// internal/wsclient.TelemetryProvider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/Anexgohan/pankha/internal/buildinfo"
	"github.com/Anexgohan/pankha/internal/config"
	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/internal/protocol"
)

// Provider reads current config and hardware state to build outbound
// frames. It holds no telemetry state of its own: every call re-reads
// the config store and re-discovers hardware, so a snapshot always
// reflects the current discovery cycle.
type Provider struct {
	agentID   string
	startedAt time.Time
	hw        hardware.Backend
	store     *config.Store
}

// New builds a Provider. agentID is the stable per-install identifier
// from pkg/id; startedAt backs the uniform process-uptime calculation.
func New(agentID string, startedAt time.Time, hw hardware.Backend, store *config.Store) *Provider {
	return &Provider{agentID: agentID, startedAt: startedAt, hw: hw, store: store}
}

// Register builds the once-per-connection registration frame.
func (p *Provider) Register(ctx context.Context) (protocol.Register, error) {
	cfg := p.store.Get()

	sensors, err := p.hw.DiscoverSensors(ctx)
	if err != nil {
		return protocol.Register{}, fmt.Errorf("discovering sensors for registration: %w", err)
	}
	fans, err := p.hw.DiscoverFans(ctx)
	if err != nil {
		return protocol.Register{}, fmt.Errorf("discovering fans for registration: %w", err)
	}

	return protocol.Register{
		AgentID:        p.agentID,
		Name:           cfg.Agent.Name,
		AgentVersion:   buildinfo.Version,
		Platform:       buildinfo.Platform(),
		UpdateInterval: cfg.Agent.UpdateInterval,
		FanStepPercent: cfg.Hardware.FanStepPercent,
		HysteresisTemp: cfg.Hardware.HysteresisTemp,
		EmergencyTemp:  cfg.Hardware.EmergencyTemp,
		FailsafeSpeed:  cfg.Hardware.FailsafeSpeed,
		LogLevel:       cfg.Agent.LogLevel,
		Capabilities: protocol.Capabilities{
			Sensors:    toAnySlice(sensors),
			Fans:       toAnySlice(fans),
			FanControl: cfg.Hardware.FanControlEnabled,
		},
	}, nil
}

// Snapshot builds one per-tick telemetry frame.
func (p *Provider) Snapshot(ctx context.Context) (protocol.Data, error) {
	sensors, err := p.hw.DiscoverSensors(ctx)
	if err != nil {
		return protocol.Data{}, fmt.Errorf("discovering sensors: %w", err)
	}
	fans, err := p.hw.DiscoverFans(ctx)
	if err != nil {
		return protocol.Data{}, fmt.Errorf("discovering fans: %w", err)
	}
	health, err := p.hw.GetSystemHealth(ctx)
	if err != nil {
		return protocol.Data{}, fmt.Errorf("reading system health: %w", err)
	}
	health.AgentUptimeSeconds = time.Since(p.startedAt).Seconds()

	return protocol.Data{
		AgentID:      p.agentID,
		TimestampMs:  time.Now().UnixMilli(),
		Sensors:      sensors,
		Fans:         fans,
		SystemHealth: health,
	}, nil
}

// UpdateInterval reports the current poll period, satisfying
// wsclient.TelemetryProvider and failsafe.ConfigProvider alike.
func (p *Provider) UpdateInterval() time.Duration {
	seconds := p.store.Get().Agent.UpdateInterval
	if seconds <= 0 {
		seconds = 3
	}
	return time.Duration(seconds * float64(time.Second))
}

// FailsafeSpeed satisfies internal/failsafe.ConfigProvider.
func (p *Provider) FailsafeSpeed() int { return p.store.Get().Hardware.FailsafeSpeed }

// EmergencyTemp satisfies internal/failsafe.ConfigProvider.
func (p *Provider) EmergencyTemp() float64 { return p.store.Get().Hardware.EmergencyTemp }

// FanControlEnabled satisfies internal/failsafe.ConfigProvider and backs
// both backends' write gate; it always reads the live config so
// setEnableFanControl takes effect without a restart.
func (p *Provider) FanControlEnabled() bool { return p.store.Get().Hardware.FanControlEnabled }

func toAnySlice[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}
