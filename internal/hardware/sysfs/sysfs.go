// SPDX-License-Identifier: BSD-3-Clause

package sysfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/Anexgohan/pankha/internal/hardware"
	"github.com/Anexgohan/pankha/pkg/hwmon"
)

const fanWriteRateLimit = 100 * time.Millisecond

var fanInputPattern = regexp.MustCompile(`^fan(\d+)_input$`)

// sensorCacheEntry is the fast-path record populated on a full discovery and
// consulted on every cycle where the hot-plug counter is unchanged.
type sensorCacheEntry struct {
	inputPath string
	sensor    hardware.Sensor
}

// fanRecord is the per-fan control record: paths are refreshed on every discovery, but lastByte/lastWrite
// are preserved across rediscovery to keep dedup and rate-limiting
// working — discovery must never wipe them.
type fanRecord struct {
	mu          sync.Mutex
	pwmPath     string
	rpmPath     string
	enablePath  string
	chipName    string
	lastByte    *int
	lastWriteAt time.Time
}

var _ hardware.Backend = (*Backend)(nil)

// Backend implements hardware.Backend over /sys/class/hwmon.
// fanControl is read on every write-path call, not snapshotted at
// construction, so a setEnableFanControl command takes effect
// immediately.
type Backend struct {
	hwmonPath  string
	fanControl func() bool
	startedAt  time.Time
	logger     *slog.Logger

	sensorMu         sync.RWMutex
	sensorCache      map[string]*sensorCacheEntry
	cachedHwmonCount int
	lastFromCache    bool

	fanMu sync.RWMutex
	fans  map[string]*fanRecord
}

// New constructs a sysfs Backend rooted at hwmonPath. fanControl
// reports whether fan writes are currently permitted; nil means always
// permitted. startedAt is the process start time, used for
// SystemHealth.AgentUptimeSeconds.
func New(hwmonPath string, fanControl func() bool, startedAt time.Time, logger *slog.Logger) *Backend {
	if hwmonPath == "" {
		hwmonPath = hwmon.DefaultHwmonPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		hwmonPath:   hwmonPath,
		fanControl:  fanControl,
		startedAt:   startedAt,
		logger:      logger,
		sensorCache: make(map[string]*sensorCacheEntry),
		fans:        make(map[string]*fanRecord),
	}
}

func (b *Backend) fanControlEnabled() bool {
	return b.fanControl == nil || b.fanControl()
}

func (b *Backend) Name() string { return "sysfs" }

// DiscoverSensors returns every temperature sensor, from the cache when
// the hwmon directory count is unchanged, via a full traversal otherwise.
func (b *Backend) DiscoverSensors(ctx context.Context) ([]hardware.Sensor, error) {
	count, err := hwmon.CountEntries(ctx, b.hwmonPath)
	if errors.Is(err, hwmon.ErrFileNotFound) || errors.Is(err, hwmon.ErrDeviceNotFound) {
		return nil, fmt.Errorf("%w: %s", hardware.ErrNoHwmonTree, b.hwmonPath)
	}
	if err != nil {
		return nil, fmt.Errorf("counting hwmon entries: %w", err)
	}

	b.sensorMu.RLock()
	cachedCount := b.cachedHwmonCount
	cacheEmpty := len(b.sensorCache) == 0
	b.sensorMu.RUnlock()

	if count == cachedCount && !cacheEmpty {
		sensors := b.readSensorsFromCache(ctx)
		b.sensorMu.Lock()
		b.lastFromCache = true
		b.sensorMu.Unlock()
		return sensors, nil
	}

	sensors, err := b.discoverSensorsFull(ctx)
	if err != nil {
		return nil, err
	}

	newCache := make(map[string]*sensorCacheEntry, len(sensors))
	for _, s := range sensors {
		newCache[s.ID] = &sensorCacheEntry{inputPath: s.SourcePath, sensor: s}
	}

	b.sensorMu.Lock()
	b.sensorCache = newCache
	b.cachedHwmonCount = count
	b.lastFromCache = false
	b.sensorMu.Unlock()

	return sensors, nil
}

func (b *Backend) readSensorsFromCache(ctx context.Context) []hardware.Sensor {
	b.sensorMu.RLock()
	entries := make([]*sensorCacheEntry, 0, len(b.sensorCache))
	for _, e := range b.sensorCache {
		entries = append(entries, e)
	}
	b.sensorMu.RUnlock()

	sensors := make([]hardware.Sensor, 0, len(entries))
	for _, e := range entries {
		raw, err := hwmon.ReadInt(ctx, e.inputPath)
		if err != nil {
			continue
		}
		s := e.sensor
		s.Temperature = float64(raw) / 1000.0
		sensors = append(sensors, s)
	}
	return sensors
}

func (b *Backend) discoverSensorsFull(ctx context.Context) ([]hardware.Sensor, error) {
	chipDirs, err := hwmon.ListChipDirs(ctx, b.hwmonPath)
	if err != nil {
		return nil, fmt.Errorf("listing hwmon chips: %w", err)
	}

	var sensors []hardware.Sensor
	for _, dir := range chipDirs {
		chipName, err := hwmon.ReadString(ctx, filepath.Join(dir, "name"))
		if err != nil {
			continue
		}

		inputs, err := hwmon.Glob(dir, "temp*_input")
		if err != nil {
			continue
		}

		for _, inputPath := range inputs {
			sensor, ok := b.parseSensor(ctx, dir, inputPath, chipName)
			if !ok {
				continue
			}
			sensors = append(sensors, sensor)
		}
	}
	return sensors, nil
}

var tempInputPattern = regexp.MustCompile(`^temp(\d+)_input$`)

func (b *Backend) parseSensor(ctx context.Context, chipDir, inputPath, chipName string) (hardware.Sensor, bool) {
	m := tempInputPattern.FindStringSubmatch(filepath.Base(inputPath))
	if m == nil {
		return hardware.Sensor{}, false
	}
	num := m[1]

	raw, err := hwmon.ReadInt(ctx, inputPath)
	if err != nil {
		return hardware.Sensor{}, false
	}

	label, err := hwmon.ReadString(ctx, filepath.Join(chipDir, "temp"+num+"_label"))
	if err != nil || label == "" {
		label = "Sensor " + num
	}

	maxTemp := readOptionalMilliDegree(ctx, filepath.Join(chipDir, "temp"+num+"_max"))
	critTemp := readOptionalMilliDegree(ctx, filepath.Join(chipDir, "temp"+num+"_crit"))

	kind := hardware.ClassifyChip(chipName)
	friendly := hardware.FriendlyChipName(chipName)

	return hardware.Sensor{
		ID:          hardware.SensorID(chipName, label),
		Name:        friendly + " " + label,
		Temperature: float64(raw) / 1000.0,
		Kind:        kind,
		MaxTemp:     maxTemp,
		CritTemp:    critTemp,
		ChipLabel:   chipName,
		HWName:      friendly,
		SourcePath:  inputPath,
	}, true
}

func readOptionalMilliDegree(ctx context.Context, path string) *float64 {
	raw, err := hwmon.ReadInt(ctx, path)
	if err != nil {
		return nil
	}
	v := float64(raw) / 1000.0
	return &v
}

// DiscoverFans traverses the hwmon tree every cycle (no list-level
// caching, so hot-plugs are picked up immediately) and updates existing
// fan records in place, preserving their last-written byte and
// timestamp.
func (b *Backend) DiscoverFans(ctx context.Context) ([]hardware.Fan, error) {
	chipDirs, err := hwmon.ListChipDirs(ctx, b.hwmonPath)
	if err != nil {
		return nil, fmt.Errorf("listing hwmon chips: %w", err)
	}

	var fans []hardware.Fan
	for _, dir := range chipDirs {
		chipName, err := hwmon.ReadString(ctx, filepath.Join(dir, "name"))
		if err != nil {
			continue
		}

		inputs, err := hwmon.Glob(dir, "fan*_input")
		if err != nil {
			continue
		}

		for _, inputPath := range inputs {
			m := fanInputPattern.FindStringSubmatch(filepath.Base(inputPath))
			if m == nil {
				continue
			}
			num := m[1]
			pwmPath := filepath.Join(dir, "pwm"+num)
			if !hwmon.FileExists(pwmPath) {
				continue
			}
			enablePath := filepath.Join(dir, "pwm"+num+"_enable")
			if !hwmon.FileExists(enablePath) {
				enablePath = ""
			}

			fanID := strings.ReplaceAll(strings.ToLower(chipName), " ", "_") + "_fan_" + num

			rec := b.upsertFanRecord(fanID, pwmPath, inputPath, enablePath, chipName)

			var rpm *int
			if v, err := hwmon.ReadInt(ctx, inputPath); err == nil {
				rpm = &v
			}
			pwmByte := 128
			if v, err := hwmon.ReadInt(ctx, pwmPath); err == nil {
				pwmByte = v
			}
			percent := int(math.Round(float64(pwmByte) / 255.0 * 100.0))

			status := hardware.FanStatusStopped
			if rpm != nil && *rpm > 0 {
				status = hardware.FanStatusOK
			}

			fans = append(fans, hardware.Fan{
				ID:           fanID,
				Name:         chipName + " Fan " + num,
				RPM:          rpm,
				CurrentSpeed: percent,
				TargetSpeed:  percent,
				Status:       status,
				HasPWM:       true,
				ControlPath:  rec.pwmPath,
			})
		}
	}
	return fans, nil
}

func (b *Backend) upsertFanRecord(id, pwmPath, rpmPath, enablePath, chipName string) *fanRecord {
	b.fanMu.Lock()
	defer b.fanMu.Unlock()

	rec, ok := b.fans[id]
	if !ok {
		rec = &fanRecord{}
		b.fans[id] = rec
	}
	rec.mu.Lock()
	rec.pwmPath = pwmPath
	rec.rpmPath = rpmPath
	rec.enablePath = enablePath
	rec.chipName = chipName
	rec.mu.Unlock()
	return rec
}

// SetFanSpeed runs the clamp/dedup/rate-limit/manual-mode-enable write
// sequence for one fan. With fan control disabled it is an
// informational no-op: no PWM file is touched.
func (b *Backend) SetFanSpeed(ctx context.Context, fanID string, percent int) error {
	if !b.fanControlEnabled() {
		b.logger.Info("fan control disabled, ignoring set_fan_speed", "fan", fanID, "percent", percent)
		return nil
	}

	b.fanMu.RLock()
	rec, ok := b.fans[fanID]
	b.fanMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", hardware.ErrUnknownFan, fanID)
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	targetByte := int(math.Round(float64(percent) / 100.0 * 255.0))

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.lastByte != nil && *rec.lastByte == targetByte {
		return nil
	}
	if !rec.lastWriteAt.IsZero() && time.Since(rec.lastWriteAt) < fanWriteRateLimit {
		return nil
	}

	if rec.enablePath != "" {
		current, err := hwmon.ReadString(ctx, rec.enablePath)
		if err != nil || current != "1" {
			if err := hwmon.WriteString(ctx, rec.enablePath, "1"); err != nil {
				b.logger.Warn("failed to enable manual pwm mode", "fan", fanID, "error", err)
			}
		}
	}

	if err := hwmon.WriteInt(ctx, rec.pwmPath, targetByte); err != nil {
		rec.lastByte = nil
		return fmt.Errorf("writing pwm for %s: %w", fanID, err)
	}

	rec.lastByte = &targetByte
	rec.lastWriteAt = time.Now()
	return nil
}

// EmergencyStop drives every known fan to 100%, best effort. With fan
// control disabled it is an informational no-op: the fans were never
// taken off BIOS/BMC auto control in that mode.
func (b *Backend) EmergencyStop(ctx context.Context) error {
	if !b.fanControlEnabled() {
		b.logger.Info("fan control disabled, ignoring emergency stop")
		return nil
	}

	b.fanMu.RLock()
	ids := make([]string, 0, len(b.fans))
	for id := range b.fans {
		ids = append(ids, id)
	}
	b.fanMu.RUnlock()

	for _, id := range ids {
		if err := b.SetFanSpeed(ctx, id, 100); err != nil {
			b.logger.Error("emergency stop: failed to set fan to 100%", "fan", id, "error", err)
		}
	}
	b.logger.Warn("emergency stop: all fans commanded to 100%")
	return nil
}

// InvalidateCache drops the sensor discovery cache, forcing a full
// rediscovery on the next DiscoverSensors call. Fan records are untouched:
// they must survive invalidation.
func (b *Backend) InvalidateCache(ctx context.Context) {
	b.sensorMu.Lock()
	b.sensorCache = make(map[string]*sensorCacheEntry)
	b.cachedHwmonCount = 0
	b.sensorMu.Unlock()
}

func (b *Backend) LastDiscoveryFromCache() bool {
	b.sensorMu.RLock()
	defer b.sensorMu.RUnlock()
	return b.lastFromCache
}

// GetSystemHealth reads host CPU/memory utilization and reports uptime
// from the process start time captured at construction.
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

// DumpHardwareInfo builds the diagnostic tree: every chip, its sensors
// with thresholds, and per-PWM enable-mode/writable/percentage detail.
func (b *Backend) DumpHardwareInfo(ctx context.Context) (hardware.Diagnostics, error) {
	chipDirs, err := hwmon.ListChipDirs(ctx, b.hwmonPath)
	if err != nil {
		return hardware.Diagnostics{}, fmt.Errorf("listing hwmon chips: %w", err)
	}

	dump := hardware.Diagnostics{Backend: b.Name(), GeneratedAt: time.Now()}

	for _, dir := range chipDirs {
		chipName, err := hwmon.ReadString(ctx, filepath.Join(dir, "name"))
		if err != nil {
			continue
		}

		chip := hardware.ChipDiagnostic{Name: chipName}

		tempInputs, _ := hwmon.Glob(dir, "temp*_input")
		for _, inputPath := range tempInputs {
			if sensor, ok := b.parseSensor(ctx, dir, inputPath, chipName); ok {
				chip.Sensors = append(chip.Sensors, sensor)
			}
		}

		pwmPaths, _ := hwmon.Glob(dir, "pwm[0-9]*")
		for _, pwmPath := range pwmPaths {
			base := filepath.Base(pwmPath)
			if strings.Contains(base, "_") {
				continue // skip pwmN_enable / pwmN_mode etc, handled below
			}
			enablePath := pwmPath + "_enable"
			mode := hardware.PWMDisabled
			if v, err := hwmon.ReadInt(ctx, enablePath); err == nil {
				switch v {
				case 1:
					mode = hardware.PWMManual
				case 2:
					mode = hardware.PWMAutomatic
				default:
					mode = hardware.PWMDisabled
				}
			}
			percent := 0
			if v, err := hwmon.ReadInt(ctx, pwmPath); err == nil {
				percent = int(math.Round(float64(v) / 255.0 * 100.0))
			}
			chip.PWMs = append(chip.PWMs, hardware.PWMDiagnostic{
				ControlPath: pwmPath,
				Writable:    hwmon.IsWritable(pwmPath),
				EnableMode:  mode,
				Percent:     percent,
			})
		}

		dump.Chips = append(dump.Chips, chip)
	}

	return dump, nil
}
