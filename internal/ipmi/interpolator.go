// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"fmt"
	"strconv"
	"strings"
)

// TranslateSpeed converts a clamped 0-100 fan percentage into the wire
// value a zone's BMC expects:
//
//   - byte_scale: linear map 0-100 into [output_min, output_max],
//     rendered as "0xNN". Truncates rather than rounds.
//   - decimal_hex: percent itself, rendered as "0xNN".
//   - integer: percent itself, rendered as a decimal string.
func TranslateSpeed(percent int, t SpeedTranslation) string {
	switch t.Kind {
	case SpeedTranslationByteScale:
		rangeSize := float64(t.OutputMax - t.OutputMin)
		value := int((float64(percent)/100.0)*rangeSize) + t.OutputMin
		return fmt.Sprintf("0x%02x", value)
	case SpeedTranslationInteger:
		return strconv.Itoa(percent)
	case SpeedTranslationDecimalHex:
		fallthrough
	default:
		return fmt.Sprintf("0x%02x", percent)
	}
}

// InterpolateCommand substitutes the `{{SPEED_HEX}}`/`{{SPEED}}`
// placeholders in a raw-bytes command template with the translated speed
// value. speedValue is whatever TranslateSpeed returned: "{{SPEED_HEX}}"
// and "{{SPEED}}" both resolve to that same string; neither placeholder
// re-derives a different base or format from the other.
func InterpolateCommand(template, speedValue string) string {
	out := strings.ReplaceAll(template, "{{SPEED_HEX}}", speedValue)
	out = strings.ReplaceAll(out, "{{SPEED}}", speedValue)
	return out
}
