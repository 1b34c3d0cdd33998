// SPDX-License-Identifier: BSD-3-Clause

package hardware_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anexgohan/pankha/internal/hardware"
)

func TestClassifyChipKnownBrands(t *testing.T) {
	require.Equal(t, hardware.SensorKindCPU, hardware.ClassifyChip("k10temp"))
	require.Equal(t, hardware.SensorKindNVMe, hardware.ClassifyChip("nvme"))
	require.Equal(t, hardware.SensorKindMotherboard, hardware.ClassifyChip("nct6775"))
	require.Equal(t, hardware.SensorKindACPI, hardware.ClassifyChip("acpitz"))
}

func TestClassifyChipUnknownFallsBackToOther(t *testing.T) {
	require.Equal(t, hardware.SensorKindOther, hardware.ClassifyChip("mysteryvendor"))
}

func TestFriendlyChipName(t *testing.T) {
	require.Equal(t, "CPU AMD", hardware.FriendlyChipName("k10temp"))
	require.Equal(t, "Storage Samsung", hardware.FriendlyChipName("nvme-samsung"))
	require.Equal(t, "Motherboard Nuvoton", hardware.FriendlyChipName("nct6775"))
	require.Equal(t, "ACPI", hardware.FriendlyChipName("acpitz"))
	require.Equal(t, "mysteryvendor", hardware.FriendlyChipName("mysteryvendor"))
}

func TestSensorIDSanitizesLabel(t *testing.T) {
	require.Equal(t, "k10temp_tctl", hardware.SensorID("k10temp", "Tctl"))
	require.Equal(t, "nct6775_cpu_vrm", hardware.SensorID("nct6775", "CPU-VRM"))
	require.Equal(t, "it87_system_fan", hardware.SensorID("it87", "System/Fan"))
}
