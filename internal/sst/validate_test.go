// SPDX-License-Identifier: BSD-3-Clause

package sst

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFloat_Membership(t *testing.T) {
	for _, v := range UpdateIntervalsSeconds {
		require.NoError(t, ValidateUpdateInterval(v))
	}
}

func TestValidateFloat_Rejection(t *testing.T) {
	err := ValidateUpdateInterval(4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInSet))
	assert.Contains(t, err.Error(), "update_interval")
}

func TestValidateInt(t *testing.T) {
	require.NoError(t, ValidateFanStep(25))
	require.Error(t, ValidateFanStep(4))
	require.NoError(t, ValidateFailsafeSpeed(70))
	require.Error(t, ValidateFailsafeSpeed(75))
}

func TestValidateLogLevel(t *testing.T) {
	require.NoError(t, ValidateLogLevel("CRITICAL"))
	require.Error(t, ValidateLogLevel("VERBOSE"))
}
