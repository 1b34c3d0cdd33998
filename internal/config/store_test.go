// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pankha.json")

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Contains(t, s.Get().Backend.ServerURL, HubPlaceholder)
}

func TestLoad_MigratesObsoleteKeysAndAddsFailsafeSpeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pankha.json")
	raw := map[string]any{
		"hardware": map[string]any{
			"filter_duplicate_sensors":   true,
			"duplicate_sensor_tolerance": 2.0,
			"fan_safety_minimum":         20,
			"fan_control_enabled":        true,
		},
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	s, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 70, s.Get().Hardware.FailsafeSpeed)

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(rewritten, &m))
	hw := m["hardware"].(map[string]any)
	_, present := hw["filter_duplicate_sensors"]
	assert.False(t, present)
}

func TestStore_MutatorsValidateAgainstSST(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pankha.json")
	s, err := Load(path, nil)
	require.NoError(t, err)

	require.NoError(t, s.SetFanStep(25))
	assert.Equal(t, 25, s.Get().Hardware.FanStepPercent)

	err = s.SetFanStep(4)
	require.Error(t, err)
	assert.Equal(t, 25, s.Get().Hardware.FanStepPercent)
}

func TestStore_SaveIsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pankha.json")
	s, err := Load(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetAgentName("rack-3-top"))

	reloaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "rack-3-top", reloaded.Get().Agent.Name)
}
