// SPDX-License-Identifier: BSD-3-Clause

package ipmi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslateSpeedByteScale(t *testing.T) {
	// output_min=0, output_max=255: 50% lands on 0x7f (truncated, not rounded).
	got := TranslateSpeed(50, SpeedTranslation{Kind: SpeedTranslationByteScale, OutputMin: 0, OutputMax: 255})
	require.Equal(t, "0x7f", got)
}

func TestTranslateSpeedByteScaleWithOutputMin(t *testing.T) {
	got := TranslateSpeed(0, SpeedTranslation{Kind: SpeedTranslationByteScale, OutputMin: 10, OutputMax: 100})
	require.Equal(t, "0x0a", got)
}

func TestTranslateSpeedDecimalHex(t *testing.T) {
	got := TranslateSpeed(75, SpeedTranslation{Kind: SpeedTranslationDecimalHex})
	require.Equal(t, "0x4b", got)
}

func TestTranslateSpeedInteger(t *testing.T) {
	got := TranslateSpeed(42, SpeedTranslation{Kind: SpeedTranslationInteger})
	require.Equal(t, "42", got)
}

func TestInterpolateCommandSubstitutesBothPlaceholders(t *testing.T) {
	got := InterpolateCommand("0x30 0x70 0x01 00 {{SPEED_HEX}} {{SPEED}}", "0x32")
	require.Equal(t, "0x30 0x70 0x01 00 0x32 0x32", got)
}
