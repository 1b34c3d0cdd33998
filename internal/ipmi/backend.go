// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Anexgohan/pankha/internal/hardware"
)

var _ hardware.Backend = (*Backend)(nil)

// commandRunner is the subset of *Executor the backend depends on. Tests
// substitute a fake so profile/lifecycle/fan-zone logic can be exercised
// without spawning a real ipmitool binary.
type commandRunner interface {
	SDRCsv(ctx context.Context) (string, error)
	Raw(ctx context.Context, bytesArg string) (string, error)
	MCInfo(ctx context.Context) (string, error)
	FRU(ctx context.Context) (string, error)
	DryRun() bool
}

var _ commandRunner = (*Executor)(nil)

// Backend implements hardware.Backend by driving a BMC through ipmitool
// under a loaded Profile. A profile that failed to load at
// construction leaves the backend able to report ErrProfileNotLoaded
// from discovery, SetFanSpeed and DumpHardwareInfo rather than
// panicking the caller; EmergencyStop then logs and returns nil, and
// GetSystemHealth/InvalidateCache do not depend on the profile.
// fanControl is read on every write-path call, not snapshotted at
// construction, so a setEnableFanControl command takes effect
// immediately.
type Backend struct {
	profile    *Profile
	executor   commandRunner
	fanControl func() bool
	startedAt  time.Time
	logger     *slog.Logger

	initialized atomic.Bool

	sdrMu     sync.Mutex
	sdrCache  *string
	fromCache atomic.Bool
}

// New constructs a Backend. profile may be nil if loading failed; the
// backend still exists so discovery/telemetry calls return a clear error
// instead of the process never starting. fanControl reports whether fan
// writes are currently permitted; nil means always permitted.
func New(profile *Profile, executor *Executor, fanControl func() bool, startedAt time.Time, logger *slog.Logger) *Backend {
	return newWithRunner(profile, executor, fanControl, startedAt, logger)
}

func newWithRunner(profile *Profile, runner commandRunner, fanControl func() bool, startedAt time.Time, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		profile:    profile,
		executor:   runner,
		fanControl: fanControl,
		startedAt:  startedAt,
		logger:     logger,
	}
}

func (b *Backend) fanControlEnabled() bool {
	return b.fanControl == nil || b.fanControl()
}

func (b *Backend) Name() string { return "ipmi" }

func (b *Backend) ipmiProtocol() (*IpmiProtocol, error) {
	if b.profile == nil || b.profile.Protocols.IPMI == nil {
		return nil, hardware.ErrProfileNotLoaded
	}
	return b.profile.Protocols.IPMI, nil
}

func (b *Backend) hardwareName() string {
	if b.profile == nil {
		return "Unknown IPMI"
	}
	model := "Unknown"
	if len(b.profile.Metadata.ModelFamily) > 0 {
		model = b.profile.Metadata.ModelFamily[0]
	}
	return fmt.Sprintf("%s %s", b.profile.Metadata.Vendor, model)
}

// runInitialization executes the profile's lifecycle.initialization
// commands once. A critical command's failure aborts initialization and
// is returned; a non-critical failure is logged and init continues.
func (b *Backend) runInitialization(ctx context.Context, ipmi *IpmiProtocol) error {
	for _, cmd := range ipmi.Lifecycle.Initialization {
		if cmd.Bytes == "" {
			continue
		}
		if b.executor.DryRun() {
			b.logger.Info("ipmi init dry-run", "command", cmd.Name, "bytes", cmd.Bytes)
			continue
		}
		if _, err := b.executor.Raw(ctx, cmd.Bytes); err != nil {
			if cmd.Critical {
				return fmt.Errorf("%w: %s: %w", hardware.ErrCriticalInitFailed, cmd.Name, err)
			}
			b.logger.Warn("non-critical ipmi init command failed", "command", cmd.Name, "error", err)
			continue
		}
		b.logger.Info("ipmi init command succeeded", "command", cmd.Name)
	}

	b.initialized.Store(true)
	return nil
}

// RunResetToFactory returns the BMC to auto-control. Callable any number
// of times; a no-op before initialization has ever succeeded, since
// nothing was changed from factory defaults in that case.
func (b *Backend) RunResetToFactory(ctx context.Context) error {
	ipmi, err := b.ipmiProtocol()
	if err != nil {
		b.logger.Warn("no ipmi profile loaded, skipping reset_to_factory")
		return nil
	}

	if !b.initialized.Load() {
		b.logger.Debug("ipmi backend never initialized, skipping reset_to_factory")
		return nil
	}

	for _, cmd := range ipmi.Lifecycle.ResetToFactory {
		if cmd.Bytes == "" {
			continue
		}
		if b.executor.DryRun() {
			b.logger.Info("ipmi reset dry-run", "command", cmd.Name, "bytes", cmd.Bytes)
			continue
		}
		if _, err := b.executor.Raw(ctx, cmd.Bytes); err != nil {
			b.logger.Error("ipmi reset command failed", "command", cmd.Name, "error", err)
			continue
		}
		b.logger.Info("ipmi reset command succeeded", "command", cmd.Name)
	}

	return nil
}

// sdrCSV fetches SDR CSV output, reusing whatever was captured earlier in
// this discovery cycle so sensors and fans are parsed from one
// consistent snapshot and ipmitool is spawned at most once per cycle.
// InvalidateCache resets the cache between cycles.
func (b *Backend) sdrCSV(ctx context.Context) (string, error) {
	b.sdrMu.Lock()
	defer b.sdrMu.Unlock()

	if b.sdrCache != nil {
		b.fromCache.Store(true)
		return *b.sdrCache, nil
	}

	b.fromCache.Store(false)
	csv, err := b.executor.SDRCsv(ctx)
	if err != nil {
		return "", err
	}
	b.sdrCache = &csv
	return csv, nil
}

func (b *Backend) DiscoverSensors(ctx context.Context) ([]hardware.Sensor, error) {
	ipmi, err := b.ipmiProtocol()
	if err != nil {
		return nil, err
	}

	if !b.initialized.Load() {
		if err := b.runInitialization(ctx, ipmi); err != nil {
			return nil, err
		}
	}

	csv, err := b.sdrCSV(ctx)
	if err != nil {
		return nil, err
	}

	return ParseSensors(csv, ipmi.Parsing, b.hardwareName()), nil
}

func (b *Backend) DiscoverFans(ctx context.Context) ([]hardware.Fan, error) {
	ipmi, err := b.ipmiProtocol()
	if err != nil {
		return nil, err
	}

	hasControl := b.fanControlEnabled() && len(ipmi.FanZones) > 0

	csv, err := b.sdrCSV(ctx)
	if err != nil {
		return nil, err
	}

	return ParseFans(csv, ipmi.Parsing, hasControl), nil
}

func (b *Backend) GetSystemHealth(ctx context.Context) (hardware.SystemHealth, error) {
	var health hardware.SystemHealth
	health.AgentUptimeSeconds = time.Since(b.startedAt).Seconds()

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err == nil && len(percents) > 0 {
		health.CPUUsagePercent = percents[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		health.MemoryUsagePercent = vm.UsedPercent
	}

	return health, nil
}

// SetFanSpeed matches fanID against configured fan zones; "all" and
// "all_fans" match every zone. Fan control disabled in config degrades
// this to a silent success, matching the sysfs backend's no-op
// contract.
func (b *Backend) SetFanSpeed(ctx context.Context, fanID string, percent int) error {
	ipmi, err := b.ipmiProtocol()
	if err != nil {
		return err
	}

	if !b.fanControlEnabled() {
		b.logger.Info("fan control disabled, ignoring set_fan_speed", "fan", fanID, "percent", percent)
		return nil
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	matched := false
	for _, zone := range ipmi.FanZones {
		if zone.ID != fanID && fanID != "all" && fanID != "all_fans" {
			continue
		}
		matched = true

		speedValue := TranslateSpeed(percent, zone.SpeedTranslation)
		if zone.Commands.SetSpeed.Bytes == "" {
			continue
		}
		bytesArg := InterpolateCommand(zone.Commands.SetSpeed.Bytes, speedValue)

		if b.executor.DryRun() {
			b.logger.Info("ipmi set_fan_speed dry-run", "zone", zone.Name, "percent", percent, "bytes", bytesArg)
			continue
		}
		if _, err := b.executor.Raw(ctx, bytesArg); err != nil {
			return fmt.Errorf("setting fan zone %s: %w", zone.Name, err)
		}
	}

	if !matched {
		return fmt.Errorf("%w: %s", ErrNoFanZone, fanID)
	}
	return nil
}

// EmergencyStop returns the BMC to auto-control, which on real hardware
// typically ramps fans to a safe high speed under the BMC's own thermal
// logic. With fan control disabled it is an informational no-op: the
// agent never took the BMC out of auto-control in that mode, so there
// is nothing to return.
func (b *Backend) EmergencyStop(ctx context.Context) error {
	if !b.fanControlEnabled() {
		b.logger.Info("fan control disabled, ignoring emergency stop")
		return nil
	}
	return b.RunResetToFactory(ctx)
}

func (b *Backend) InvalidateCache(ctx context.Context) {
	b.sdrMu.Lock()
	b.sdrCache = nil
	b.sdrMu.Unlock()
}

func (b *Backend) LastDiscoveryFromCache() bool {
	return b.fromCache.Load()
}

// DumpHardwareInfo builds the diagnostic tree from SDR output only;
// FRU and mc-info are not queried. PWM detail is absent: IPMI zones
// have no sysfs-style enable/writable file.
func (b *Backend) DumpHardwareInfo(ctx context.Context) (hardware.Diagnostics, error) {
	ipmi, err := b.ipmiProtocol()
	if err != nil {
		return hardware.Diagnostics{}, err
	}

	csv, err := b.sdrCSV(ctx)
	if err != nil {
		return hardware.Diagnostics{}, err
	}

	sensors := ParseSensors(csv, ipmi.Parsing, b.hardwareName())

	return hardware.Diagnostics{
		Backend:     b.Name(),
		GeneratedAt: time.Now(),
		Chips: []hardware.ChipDiagnostic{
			{
				Name:    b.hardwareName(),
				Sensors: sensors,
			},
		},
	}, nil
}
