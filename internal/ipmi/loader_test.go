// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const baseProfile = `{
  "metadata": {"vendor": "Acme", "model_family": ["X11"]},
  "protocols": {
    "ipmi": {
      "parsing": {"fan_match_token": "RPM", "temp_match_token": "degrees C"},
      "fan_zones": [
        {"id": "cpu", "name": "CPU Zone", "speed_translation": {"kind": "byte_scale", "output_min": 0, "output_max": 255},
         "commands": {"set_speed": {"name": "set", "bytes": "0x30 0x70 0x01 0x00 {{SPEED_HEX}}"}}}
      ],
      "lifecycle": {
        "initialization": [{"name": "disable-thermal", "bytes": "0x30 0x01", "critical": true}],
        "reset_to_factory": [{"name": "restore", "bytes": "0x30 0x02", "critical": true}]
      }
    }
  }
}`

const childProfile = `{
  "extends": "base",
  "metadata": {"vendor": "Acme", "model_family": ["X12"]},
  "protocols": {
    "ipmi": {
      "fan_zones": [
        {"id": "sys", "name": "System Zone", "speed_translation": {"kind": "integer"},
         "commands": {"set_speed": {"name": "set", "bytes": "0x30 0x71 {{SPEED}}"}}}
      ]
    }
  }
}`

const unsafeProfile = `{
  "metadata": {"vendor": "Acme", "model_family": ["X11"]},
  "protocols": {
    "ipmi": {
      "parsing": {"fan_match_token": "RPM", "temp_match_token": "degrees C"},
      "lifecycle": {
        "reset_to_factory": [{"name": "restore", "bytes": "0x30 0x02", "critical": false}]
      }
    }
  }
}`

func TestLoadProfileStandalone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.json")
	require.NoError(t, os.WriteFile(path, []byte(baseProfile), 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, "Acme", p.Metadata.Vendor)
	require.Len(t, p.Protocols.IPMI.FanZones, 1)
	require.Equal(t, "cpu", p.Protocols.IPMI.FanZones[0].ID)
}

func TestLoadProfileResolvesExtends(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.json"), []byte(baseProfile), 0o644))
	childPath := filepath.Join(dir, "child.json")
	require.NoError(t, os.WriteFile(childPath, []byte(childProfile), 0o644))

	p, err := LoadProfile(childPath)
	require.NoError(t, err)
	require.Equal(t, []string{"X12"}, p.Metadata.ModelFamily)
	// fan_zones replaced, not merged: only the child's zone survives.
	require.Len(t, p.Protocols.IPMI.FanZones, 1)
	require.Equal(t, "sys", p.Protocols.IPMI.FanZones[0].ID)
	// lifecycle was not overridden by the child, so it is inherited whole.
	require.Len(t, p.Protocols.IPMI.Lifecycle.Initialization, 1)
	require.Len(t, p.Protocols.IPMI.Lifecycle.ResetToFactory, 1)
	require.True(t, p.Protocols.IPMI.Lifecycle.ResetToFactory[0].Critical)
}

func TestLoadProfileRejectsUnsafeResetToFactory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "unsafe.json")
	require.NoError(t, os.WriteFile(path, []byte(unsafeProfile), 0o644))

	_, err := LoadProfile(path)
	require.ErrorIs(t, err, ErrProfileUnsafeReset)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrProfileRead)
}
