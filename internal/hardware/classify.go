// SPDX-License-Identifier: BSD-3-Clause

package hardware

import "strings"

// brandSubstrings pairs a chip-name substring with the brand it implies.
// Order matters: first match wins. Covers the CPU, storage, and
// motherboard vendors that show up under hwmon in practice.
var brandSubstrings = []struct {
	substr string
	brand  string
}{
	{"k10temp", "AMD"},
	{"zenpower", "AMD"},
	{"amd", "AMD"},
	{"ryzen", "AMD"},
	{"epyc", "AMD"},
	{"coretemp", "Intel"},
	{"intel", "Intel"},
	{"xeon", "Intel"},
	{"samsung", "Samsung"},
	{"seagate", "Seagate"},
	{"crucial", "Crucial"},
	{"kingston", "Kingston"},
	{"corsair", "Corsair"},
	{"sandisk", "SanDisk"},
	{"micron", "Micron"},
	{"hynix", "SK Hynix"},
	{"toshiba", "Toshiba"},
	{"adata", "ADATA"},
	{"asus", "ASUS"},
	{"gigabyte", "Gigabyte"},
	{"msi", "MSI"},
	{"asrock", "ASRock"},
	{"nct", "Nuvoton"},
	{"nuvoton", "Nuvoton"},
	{"it8", "ITE"},
}

// extractBrand returns the vendor implied by a lowercased chip name, or ""
// if none of brandSubstrings match.
func extractBrand(lower string) string {
	for _, e := range brandSubstrings {
		if strings.Contains(lower, e.substr) {
			return e.brand
		}
	}
	return ""
}

// ClassifyChip maps a hwmon/IPMI chip name to a SensorKind, by substring on
// the same type-indicating tokens FriendlyChipName uses.
func ClassifyChip(chipName string) SensorKind {
	lower := strings.ToLower(chipName)
	switch {
	case strings.Contains(lower, "k10temp"), strings.Contains(lower, "coretemp"), strings.Contains(lower, "cpu"):
		return SensorKindCPU
	case strings.Contains(lower, "nvme"):
		return SensorKindNVMe
	case strings.Contains(lower, "it8"), strings.Contains(lower, "nct"):
		return SensorKindMotherboard
	case strings.Contains(lower, "acpi"):
		return SensorKindACPI
	default:
		return SensorKindOther
	}
}

// FriendlyChipName builds the "TYPE BRAND" display prefix (e.g. "CPU AMD",
// "Storage Samsung", "Motherboard Nuvoton"), falling back to the bare
// type or the raw chip name when no brand or type is recognized.
func FriendlyChipName(chipName string) string {
	lower := strings.ToLower(chipName)
	brand := extractBrand(lower)

	typeName := ""
	switch {
	case strings.Contains(lower, "k10temp"), strings.Contains(lower, "coretemp"), strings.Contains(lower, "cpu"):
		typeName = "CPU"
	case strings.Contains(lower, "nvme"), strings.Contains(lower, "storage"):
		typeName = "Storage"
	case strings.Contains(lower, "it8"), strings.Contains(lower, "nct"):
		typeName = "Motherboard"
	case strings.Contains(lower, "acpi"):
		return "ACPI"
	default:
		return chipName
	}

	if brand == "" {
		return typeName
	}
	return typeName + " " + brand
}

// SanitizeLabel lowercases s and replaces whitespace, hyphens, slashes,
// and parentheses with underscores, yielding the label half of a stable
// sensor id.
func SanitizeLabel(s string) string {
	lower := strings.ToLower(s)
	replacer := strings.NewReplacer(
		" ", "_",
		"\t", "_",
		"-", "_",
		"/", "_",
		"(", "_",
		")", "_",
	)
	return replacer.Replace(lower)
}

// SensorID builds the stable sensor identity from a chip name and a raw
// sensor label.
func SensorID(chip, label string) string {
	return SanitizeLabel(chip) + "_" + SanitizeLabel(label)
}
