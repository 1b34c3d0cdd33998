// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Anexgohan/pankha/internal/sst"
	"github.com/Anexgohan/pankha/pkg/file"
)

// Store owns the single on-disk config document and the read-write lock
// that protects the in-memory copy.
type Store struct {
	path   string
	logger *slog.Logger

	mu  sync.RWMutex
	cfg Config
}

// Load reads the config at path, applying migrations before typed
// decode. A missing file is not an error: it returns the default
// configuration and logs that setup should be run.
func Load(path string, logger *slog.Logger) (*Store, error) {
	logger = logOrDefault(logger)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("no config file found, using defaults; run setup to configure the hub connection", "path", path)
		return &Store{path: path, logger: logger, cfg: Default()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	migrated, changed := migrate(raw)

	migratedData, err := json.Marshal(migrated)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var cfg Config
	if err := json.Unmarshal(migratedData, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	if strings.Contains(cfg.Backend.ServerURL, HubPlaceholder) {
		logger.Warn("hub server_url still contains the setup placeholder; run setup before expecting a connection", "server_url", cfg.Backend.ServerURL)
	}

	s := &Store{path: path, logger: logger, cfg: cfg}

	if changed {
		logger.Info("config migrated, rewriting file", "path", path)
		if err := s.Save(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Get returns a copy of the current configuration. Readers may overlap
// freely.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Save pretty-prints the current configuration and writes it atomically.
// This repo's config document is small and single-writer, so a temp-file-
// plus-rename is "atomic enough".
func (s *Store) Save() error {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	if err := file.AtomicUpdateFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	return nil
}

// mutate applies fn to the in-memory config under the write lock, then
// releases the lock before performing disk I/O.
func (s *Store) mutate(fn func(*Config)) error {
	s.mu.Lock()
	fn(&s.cfg)
	s.mu.Unlock()

	return s.Save()
}

// SetUpdateInterval validates and persists agent.update_interval.
func (s *Store) SetUpdateInterval(v float64) error {
	if err := sst.ValidateUpdateInterval(v); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Agent.UpdateInterval = v })
}

// SetFanStep validates and persists hardware.fan_step_percent.
func (s *Store) SetFanStep(v int) error {
	if err := sst.ValidateFanStep(v); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Hardware.FanStepPercent = v })
}

// SetHysteresis validates and persists hardware.hysteresis_temp.
func (s *Store) SetHysteresis(v float64) error {
	if err := sst.ValidateHysteresis(v); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Hardware.HysteresisTemp = v })
}

// SetEmergencyTemp validates and persists hardware.emergency_temp.
func (s *Store) SetEmergencyTemp(v float64) error {
	if err := sst.ValidateEmergencyTemp(v); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Hardware.EmergencyTemp = v })
}

// SetFailsafeSpeed validates and persists hardware.failsafe_speed.
func (s *Store) SetFailsafeSpeed(v int) error {
	if err := sst.ValidateFailsafeSpeed(v); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Hardware.FailsafeSpeed = v })
}

// SetLogLevel validates and persists agent.log_level. The caller is
// responsible for the hot-reload side effect.
func (s *Store) SetLogLevel(level string) error {
	if err := sst.ValidateLogLevel(level); err != nil {
		return err
	}
	return s.mutate(func(c *Config) { c.Agent.LogLevel = level })
}

// SetEnableFanControl persists hardware.fan_control_enabled. No
// validation set exists for a bool; no hardware effect until the next
// setFanSpeed.
func (s *Store) SetEnableFanControl(enabled bool) error {
	return s.mutate(func(c *Config) { c.Hardware.FanControlEnabled = enabled })
}

// SetAgentName persists agent.name. The caller trims and length-checks
// (1..=255) before calling.
func (s *Store) SetAgentName(name string) error {
	return s.mutate(func(c *Config) { c.Agent.Name = name })
}
